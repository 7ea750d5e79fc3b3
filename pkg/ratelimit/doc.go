// Package ratelimit paces timeline fetches from the rate-limit headers
// the instance published on earlier responses.
//
// The HeaderLimiter reads the stored {limit, remaining, reset} snapshot
// and sleeps for (reset - now) / remaining before a fetch, spreading the
// remaining request budget evenly across the remaining window. A missing
// or unusable snapshot means no wait: pacing is advisory, not a
// correctness requirement.
package ratelimit
