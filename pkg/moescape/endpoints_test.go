package moescape

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPostsURL(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		offset   int
		limit    int
		expected string
	}{
		{
			name:     "first page",
			userID:   "12345",
			offset:   0,
			limit:    500,
			expected: fmt.Sprintf("%s/v1/users/12345/posts?limit=500&offset=0", BaseURL),
		},
		{
			name:     "later page",
			userID:   "12345",
			offset:   1000,
			limit:    500,
			expected: fmt.Sprintf("%s/v1/users/12345/posts?limit=500&offset=1000", BaseURL),
		},
		{
			name:     "user id needing escaping",
			userID:   "user/7",
			offset:   0,
			limit:    10,
			expected: fmt.Sprintf("%s/v1/users/user%%2F7/posts?limit=10&offset=0", BaseURL),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetPostsURL(BaseURL, tt.userID, tt.offset, tt.limit)
			assert.Equal(t, tt.expected, result)

			_, err := url.Parse(result)
			assert.NoError(t, err)
		})
	}
}

func TestGetCommentsURL(t *testing.T) {
	result := GetCommentsURL(BaseURL, "abc-123", 0, 500)
	expected := fmt.Sprintf("%s/v1/posts/abc-123/comments?limit=500&offset=0", BaseURL)
	assert.Equal(t, expected, result)
}

func TestGetPostPageURL(t *testing.T) {
	assert.Equal(t, "https://moescape.ai/posts/abc-123", GetPostPageURL("abc-123"))
	assert.Equal(t, "", GetPostPageURL(""))
}

func TestClampPageSize(t *testing.T) {
	tests := []struct {
		limit    int
		expected int
	}{
		{0, MaxPageSize},
		{-5, MaxPageSize},
		{100, 100},
		{MaxPageSize, MaxPageSize},
		{MaxPageSize + 1, MaxPageSize},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClampPageSize(tt.limit), "ClampPageSize(%d)", tt.limit)
	}
}
