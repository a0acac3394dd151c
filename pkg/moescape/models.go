package moescape

// Post represents a single user post as returned by the posts endpoint
type Post struct {
	UUID      string `json:"uuid"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// Profile identifies the author of a comment or reply
type Profile struct {
	Name string `json:"name"`
}

// Comment represents one comment on a post. Replies holds first-level
// replies only; the API does not nest deeper. The slice may contain
// null entries, which callers must skip.
type Comment struct {
	Profile   Profile    `json:"profile"`
	Text      string     `json:"text"`
	CreatedAt string     `json:"created_at"`
	Likes     int        `json:"likes"`
	Replies   []*Comment `json:"replies"`
}

// CommentsResponse wraps the payload of the comments endpoint
type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}
