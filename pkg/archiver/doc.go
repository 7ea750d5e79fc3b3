// Package archiver normalizes timeline entries into record store keys.
//
// Statuses land at status/<date>/<id>, where <date> is taken from the
// entry's own created_at timestamp, so the same entry always maps to the
// same path and re-archiving is a no-op. Accounts land at account/<id>
// with last-write-wins semantics, since profiles change over time.
//
// Entries missing their identifying fields are logged as warnings and
// skipped; they never abort a page-level walk.
package archiver
