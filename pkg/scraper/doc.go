// Package scraper orchestrates the Moescape comment pipeline. It
// paginates a user's posts, orders and caps them, fetches each post's
// comment tree and flattens it into rows ready for CSV export.
//
// The pipeline degrades gracefully: a post whose comments cannot be
// fetched is skipped with a warning, and a pagination failure keeps
// whatever posts were already collected.
package scraper
