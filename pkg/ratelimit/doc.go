// Package ratelimit provides adaptive request pacing for the Moescape API.
//
// The Moescape endpoints sit behind anti-bot protection, so the scraper
// never fans out requests and instead paces a single request stream.
// The Adaptive controller starts at a configured rate and adjusts it
// from observed responses:
//
//   - every successful request multiplies the rate by a factor, capped
//     at a configured maximum
//   - every 429 response divides the rate by the same factor, with no
//     lower bound
//
// A small random jitter (bounded, 100ms by default) is added to every
// wait to avoid synchronized bursts with other clients.
//
// Usage:
//
//	ctrl := ratelimit.NewAdaptive(1.0, 2.0, 1.1, 100*time.Millisecond)
//
//	ctrl.Wait()
//	resp, err := doRequest()
//	if resp.StatusCode == http.StatusTooManyRequests {
//	    ctrl.OnRateLimited()
//	} else if err == nil {
//	    ctrl.OnSuccess()
//	}
package ratelimit
