package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tootarchive/pkg/logger"
)

// docExt is the extension appended to every key to derive its backing file.
const docExt = ".json"

// Store is a keyed on-disk JSON document store fronted by an in-memory
// cache. Once a key has been read or written, the cached value is
// authoritative for the lifetime of the process.
type Store struct {
	dir    string
	cache  map[string]json.RawMessage
	logger logger.Logger
}

// Open creates a Store rooted at <root>/<host>. The directory is created
// on demand with owner-only permissions since it holds credentials.
func Open(root, host string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	dir := filepath.Join(root, host)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	log.DebugWithFields("record store opened", map[string]interface{}{
		"dir": dir,
	})

	return &Store{
		dir:    dir,
		cache:  make(map[string]json.RawMessage),
		logger: log,
	}, nil
}

// Dir returns the directory backing this store.
func (s *Store) Dir() string {
	return s.dir
}

// path derives the backing file path for a key. Keys use forward slashes
// as separators regardless of platform.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+docExt)
}

// Get returns the document stored under key, unmarshaled into v. The
// second value reports whether the document exists; a missing document is
// a normal result, not an error. A document that exists but does not parse
// is an error.
func (s *Store) Get(key string, v interface{}) (bool, error) {
	raw, ok := s.cache[key]
	if !ok {
		data, err := os.ReadFile(s.path(key))
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.DebugWithFields("record absent", map[string]interface{}{
					"key": key,
				})
				return false, nil
			}
			return false, fmt.Errorf("failed to read record %s: %w", key, err)
		}
		if !json.Valid(data) {
			return false, fmt.Errorf("malformed record %s at %s", key, s.path(key))
		}
		raw = json.RawMessage(data)
		s.cache[key] = raw
		s.logger.DebugWithFields("record loaded", map[string]interface{}{
			"key": key,
		})
	}

	if v != nil {
		if err := json.Unmarshal(raw, v); err != nil {
			return false, fmt.Errorf("failed to decode record %s: %w", key, err)
		}
	}
	return true, nil
}

// Put writes the document to the cache and to durable storage, creating
// intermediate directories as needed. A nil document removes the cache
// entry but still serializes a null document to disk.
func (s *Store) Put(key string, v interface{}) error {
	return s.put(key, v, 0644, 0755)
}

// PutSecret behaves like Put but writes the document and its parent
// directories with owner-only permissions. Used for credentials and tokens.
func (s *Store) PutSecret(key string, v interface{}) error {
	return s.put(key, v, 0600, 0700)
}

func (s *Store) put(key string, v interface{}, fileMode, dirMode os.FileMode) error {
	var raw []byte
	if rm, ok := v.(json.RawMessage); ok && rm != nil {
		// Raw documents are API response bodies; store them byte for
		// byte so the on-disk record matches what the server sent.
		if !json.Valid(rm) {
			return fmt.Errorf("failed to encode record %s: invalid JSON document", key)
		}
		raw = rm
	} else {
		var err error
		raw, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", key, err)
		}
	}

	if v == nil {
		delete(s.cache, key)
	} else {
		s.cache[key] = json.RawMessage(raw)
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("failed to create record directory for %s: %w", key, err)
	}

	// Whole-document write via temp file and rename so a crash never
	// leaves a half-written record behind.
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, raw, fileMode); err != nil {
		return fmt.Errorf("failed to write record %s: %w", key, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace record %s: %w", key, err)
	}

	s.logger.DebugWithFields("record saved", map[string]interface{}{
		"key":  key,
		"path": path,
	})
	return nil
}

// GetOrCreate returns the stored document for key, or invokes produce
// exactly once to create it. The produced document is persisted with
// owner-only permissions and becomes authoritative immediately. In either
// case the resulting document is unmarshaled into v.
func (s *Store) GetOrCreate(key string, v interface{}, produce func() (interface{}, error)) error {
	found, err := s.Get(key, v)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	doc, err := produce()
	if err != nil {
		return fmt.Errorf("failed to create record %s: %w", key, err)
	}
	if err := s.PutSecret(key, doc); err != nil {
		return err
	}

	s.logger.InfoWithFields("record created", map[string]interface{}{
		"key": key,
	})

	if v != nil {
		if err := json.Unmarshal(s.cache[key], v); err != nil {
			return fmt.Errorf("failed to decode record %s: %w", key, err)
		}
	}
	return nil
}
