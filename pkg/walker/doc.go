// Package walker drives Link-header pagination across a timeline.
//
// A walk is a sequence of single-page fetches, one per process invocation.
// Between invocations all state lives in the record store as a cursor
// document (cache/link-<direction>/<timeline>) holding the prev/next URLs
// from the last response plus last_get, the URL that response was fetched
// from. Walking "next" stops for good once last_get catches up with the
// next link, which is how the remote API signals the oldest page.
package walker
