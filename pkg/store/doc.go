// Package store implements the keyed JSON document store that backs the
// archiver: credentials, tokens, rate-limit snapshots, pagination cursors,
// and the archived statuses and accounts themselves.
//
// Each key maps deterministically to a file under a per-host directory:
// key "status/2024-01-15/123" becomes <root>/<host>/status/2024-01-15/123.json.
// Documents are written whole and atomically (temp file plus rename), and an
// in-memory cache makes every key read-once per process.
//
// Missing documents are a normal "absent" result. Malformed documents on
// disk are surfaced as errors rather than silently treated as absent.
package store
