// Package mastodon provides a client for the subset of the Mastodon API
// the archiver consumes.
//
// This package includes:
//   - One-time app registration and password-grant token exchange, with
//     the responses persisted in the record store ("cred" and "auth")
//   - Authenticated GET with Bearer token and rate-limit header capture
//   - Helpers for constructing timeline endpoints
//   - A Link-header parser for cursor-based pagination
//
// All fatal responses (wrong content type, non-200 status, missing
// credential fields) surface as *Error values carrying the raw body.
package mastodon
