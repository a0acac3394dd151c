// Package retry provides backoff strategies for retrying transient
// fetch failures.
//
// The Moescape client owns its retry loop so it can inspect the failure
// kind on every attempt (challenge responses are never retried, 429
// responses also feed the rate controller); this package only supplies
// the delay schedule and a context-aware wait.
package retry
