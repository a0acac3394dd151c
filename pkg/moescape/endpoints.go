package moescape

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the base URL for the Moescape API
	BaseURL = "https://api.moescape.ai"

	// SiteURL is the base URL for the public site, used for post links
	SiteURL = "https://moescape.ai"

	// MaxPageSize is the largest page the API serves per request
	MaxPageSize = 500

	// MaxPostLimit caps how many posts a single scan may cover
	MaxPostLimit = 2000
)

// GetPostsURL constructs the URL for fetching a page of a user's posts
func GetPostsURL(baseURL, userID string, offset, limit int) string {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	return fmt.Sprintf("%s/v1/users/%s/posts?%s", baseURL, url.PathEscape(userID), params.Encode())
}

// GetCommentsURL constructs the URL for fetching a page of a post's comments
func GetCommentsURL(baseURL, postUUID string, offset, limit int) string {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	return fmt.Sprintf("%s/v1/posts/%s/comments?%s", baseURL, url.PathEscape(postUUID), params.Encode())
}

// GetPostPageURL constructs the public site URL for a post
func GetPostPageURL(postUUID string) string {
	if postUUID == "" {
		return ""
	}
	return fmt.Sprintf("%s/posts/%s", SiteURL, postUUID)
}

// ClampPageSize bounds a requested page size to what the API serves
func ClampPageSize(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
