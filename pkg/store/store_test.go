package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"tootarchive/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), "example.social", logger.NewNopLogger())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return s
}

func TestStore(t *testing.T) {
	t.Run("PutAndGet", func(t *testing.T) {
		s := newTestStore(t)

		doc := map[string]string{"client_id": "abc", "client_secret": "xyz"}
		if err := s.Put("cred", doc); err != nil {
			t.Fatalf("Failed to put record: %v", err)
		}

		var got map[string]string
		found, err := s.Get("cred", &got)
		if err != nil {
			t.Fatalf("Failed to get record: %v", err)
		}
		if !found {
			t.Fatal("Expected record to exist")
		}
		if got["client_id"] != "abc" || got["client_secret"] != "xyz" {
			t.Errorf("Unexpected document: %v", got)
		}
	})

	t.Run("GetAbsent", func(t *testing.T) {
		s := newTestStore(t)

		var got map[string]string
		found, err := s.Get("nope", &got)
		if err != nil {
			t.Fatalf("Absent record must not error: %v", err)
		}
		if found {
			t.Error("Expected record to be absent")
		}
	})

	t.Run("NestedKeyCreatesDirectories", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.Put("status/2024-01-15/123", map[string]string{"id": "123"}); err != nil {
			t.Fatalf("Failed to put nested record: %v", err)
		}

		path := filepath.Join(s.Dir(), "status", "2024-01-15", "123.json")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected backing file at %s: %v", path, err)
		}
	})

	t.Run("PersistsAcrossReopen", func(t *testing.T) {
		root := t.TempDir()
		s, err := Open(root, "example.social", logger.NewNopLogger())
		if err != nil {
			t.Fatalf("Failed to open store: %v", err)
		}
		if err := s.Put("cache/link-next/home", map[string]string{"next": "https://x/a"}); err != nil {
			t.Fatalf("Failed to put record: %v", err)
		}

		reopened, err := Open(root, "example.social", logger.NewNopLogger())
		if err != nil {
			t.Fatalf("Failed to reopen store: %v", err)
		}
		var got map[string]string
		found, err := reopened.Get("cache/link-next/home", &got)
		if err != nil {
			t.Fatalf("Failed to get record after reopen: %v", err)
		}
		if !found || got["next"] != "https://x/a" {
			t.Errorf("Expected persisted document, got found=%v doc=%v", found, got)
		}
	})

	t.Run("CacheIsAuthoritative", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Put("account/1", map[string]string{"id": "1", "acct": "alice"}); err != nil {
			t.Fatalf("Failed to put record: %v", err)
		}

		// Overwrite the backing file behind the store's back; the cached
		// value must still win for the rest of the process.
		path := filepath.Join(s.Dir(), "account", "1.json")
		if err := os.WriteFile(path, []byte(`{"id":"1","acct":"mallory"}`), 0644); err != nil {
			t.Fatalf("Failed to overwrite file: %v", err)
		}

		var got map[string]string
		found, err := s.Get("account/1", &got)
		if err != nil || !found {
			t.Fatalf("Failed to get record: found=%v err=%v", found, err)
		}
		if got["acct"] != "alice" {
			t.Errorf("Expected cached document, got %v", got)
		}
	})

	t.Run("NullPutRemovesCacheEntryButWritesNull", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Put("account/2", map[string]string{"id": "2"}); err != nil {
			t.Fatalf("Failed to put record: %v", err)
		}
		if err := s.Put("account/2", nil); err != nil {
			t.Fatalf("Failed to put null record: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(s.Dir(), "account", "2.json"))
		if err != nil {
			t.Fatalf("Failed to read backing file: %v", err)
		}
		if string(data) != "null" {
			t.Errorf("Expected null document on disk, got %q", data)
		}
	})

	t.Run("RawDocumentStoredVerbatim", func(t *testing.T) {
		s := newTestStore(t)

		// A raw document is a server response body; its formatting must
		// survive the round trip to disk untouched.
		body := "{\n  \"client_id\": \"abc\",\n  \"client_secret\": \"xyz\"\n}"
		if err := s.Put("cred", json.RawMessage(body)); err != nil {
			t.Fatalf("Failed to put raw record: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(s.Dir(), "cred.json"))
		if err != nil {
			t.Fatalf("Failed to read backing file: %v", err)
		}
		if string(data) != body {
			t.Errorf("Expected verbatim document on disk, got %q", data)
		}
	})

	t.Run("InvalidRawDocumentRejected", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.Put("cred", json.RawMessage("{not json")); err == nil {
			t.Error("Expected error for invalid raw document")
		}
	})

	t.Run("MalformedDocumentIsFatal", func(t *testing.T) {
		s := newTestStore(t)

		path := filepath.Join(s.Dir(), "cred.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("Failed to write malformed file: %v", err)
		}

		var got map[string]string
		if _, err := s.Get("cred", &got); err == nil {
			t.Error("Expected error for malformed document")
		}
	})
}

func TestGetOrCreate(t *testing.T) {
	t.Run("ProducerCalledOncePerMissingKey", func(t *testing.T) {
		s := newTestStore(t)

		calls := 0
		produce := func() (interface{}, error) {
			calls++
			return map[string]string{"access_token": "tok"}, nil
		}

		var tok map[string]string
		if err := s.GetOrCreate("auth", &tok, produce); err != nil {
			t.Fatalf("Failed to get or create: %v", err)
		}
		if tok["access_token"] != "tok" {
			t.Errorf("Unexpected document: %v", tok)
		}

		if err := s.GetOrCreate("auth", &tok, produce); err != nil {
			t.Fatalf("Failed to get or create: %v", err)
		}
		if calls != 1 {
			t.Errorf("Expected producer to run once, ran %d times", calls)
		}
	})

	t.Run("SecretPermissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("file modes are not meaningful on windows")
		}
		s := newTestStore(t)

		err := s.GetOrCreate("auth", nil, func() (interface{}, error) {
			return map[string]string{"access_token": "tok"}, nil
		})
		if err != nil {
			t.Fatalf("Failed to get or create: %v", err)
		}

		info, err := os.Stat(filepath.Join(s.Dir(), "auth.json"))
		if err != nil {
			t.Fatalf("Failed to stat record: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("Expected mode 0600, got %o", perm)
		}
	})

	t.Run("ProducerErrorPropagates", func(t *testing.T) {
		s := newTestStore(t)

		err := s.GetOrCreate("auth", nil, func() (interface{}, error) {
			return nil, os.ErrPermission
		})
		if err == nil {
			t.Error("Expected producer error to propagate")
		}
	})
}
