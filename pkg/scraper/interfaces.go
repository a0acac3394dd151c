package scraper

import "moescrape/pkg/moescape"

// PostIterator is a finite, non-restartable lazy sequence of posts.
// Err reports the failure that ended the sequence early, if any.
type PostIterator interface {
	Next() bool
	Post() moescape.Post
	Err() error
}

// ContentClient defines the Moescape API operations the scraper needs
type ContentClient interface {
	PostStream(userID string, limit int) PostIterator
	FetchComments(postUUID string) ([]moescape.Comment, error)
}

// apiClient adapts moescape.Client to the ContentClient interface
type apiClient struct {
	*moescape.Client
}

func (a apiClient) PostStream(userID string, limit int) PostIterator {
	return a.Posts(userID, limit)
}
