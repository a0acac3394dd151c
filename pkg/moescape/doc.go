// Package moescape provides a client for the read-only Moescape
// content API.
//
// The API sits behind anti-bot protection, so the client routes every
// request through a shared adaptive rate controller and detects
// challenge interstitials, failing fast when one is served (they
// cannot be solved programmatically). Transient failures (network
// errors, 5xx, 429) are retried with exponential backoff up to a
// fixed attempt budget; a 429 additionally lowers the permitted
// request rate.
//
// Two endpoints are consumed:
//
//	GET /v1/users/{userId}/posts?offset&limit    -> JSON array of posts
//	GET /v1/posts/{postUuid}/comments?offset&limit -> {"comments": [...]}
//
// Posts are paginated in API-maximum batches of 500; PostStream
// exposes them lazily so callers can report progress while pages are
// still arriving.
package moescape
