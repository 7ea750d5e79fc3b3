package archiver

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"

	"tootarchive/pkg/logger"
	"tootarchive/pkg/store"
)

// datePattern extracts the calendar-date prefix from a creation timestamp.
// The first date-shaped substring wins, so both "2024-01-15T08:30:00.000Z"
// and plain "2024-01-15" work.
var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Archiver persists timeline entries and their authors into the record
// store. Statuses are written once under status/<date>/<id>; accounts are
// overwritten under account/<id> whenever a fresher copy is seen.
type Archiver struct {
	store  *store.Store
	logger logger.Logger
}

// New creates a new Archiver backed by the given store
func New(st *store.Store, log logger.Logger) *Archiver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Archiver{
		store:  st,
		logger: log,
	}
}

// Account persists an author profile under account/<id>, overwriting any
// prior value. A missing document is a no-op; a document without an id is
// logged as a warning and skipped.
func (a *Archiver) Account(doc json.RawMessage) error {
	if isAbsent(doc) {
		return nil
	}

	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		a.logger.WithError(err).Warn("skipping unparsable account")
		return nil
	}

	id := idString(probe.ID)
	if id == "" {
		a.logger.WarnWithFields("skipping account without id", map[string]interface{}{
			"kind": "account",
		})
		return nil
	}

	key := "account/" + id
	if err := a.store.Put(key, doc); err != nil {
		return err
	}
	a.logger.DebugWithFields("account archived", map[string]interface{}{
		"key": key,
	})
	return nil
}

// Status persists a timeline entry under status/<date>/<id>, deriving the
// date once from the entry's own creation timestamp. An already archived
// status is left untouched. An embedded account document is forwarded to
// Account.
func (a *Archiver) Status(doc json.RawMessage) error {
	if isAbsent(doc) {
		return nil
	}

	var probe struct {
		ID        json.RawMessage `json:"id"`
		CreatedAt string          `json:"created_at"`
		Account   json.RawMessage `json:"account"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		a.logger.WithError(err).Warn("skipping unparsable status")
		return nil
	}

	id := idString(probe.ID)
	date := datePattern.FindString(probe.CreatedAt)
	if id == "" || date == "" {
		a.logger.WarnWithFields("skipping status without id or creation timestamp", map[string]interface{}{
			"kind":       "status",
			"id":         id,
			"created_at": probe.CreatedAt,
		})
		return nil
	}

	key := "status/" + date + "/" + id
	exists, err := a.store.Get(key, nil)
	if err != nil {
		return err
	}
	if exists {
		a.logger.DebugWithFields("status already archived", map[string]interface{}{
			"key": key,
		})
	} else {
		if err := a.store.Put(key, doc); err != nil {
			return err
		}
		a.logger.InfoWithFields("status archived", map[string]interface{}{
			"key":  key,
			"date": date,
		})
	}

	return a.Account(probe.Account)
}

// isAbsent reports whether a raw document is missing or JSON null
func isAbsent(doc json.RawMessage) bool {
	trimmed := bytes.TrimSpace(doc)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// idString normalizes an id field to a string. Mastodon delivers ids as
// strings, but older instances used bare numbers; both forms are accepted.
func idString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	}
	if _, err := strconv.ParseFloat(string(trimmed), 64); err != nil {
		return ""
	}
	return string(trimmed)
}
