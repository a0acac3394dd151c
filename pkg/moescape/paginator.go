package moescape

// PostStream is a lazy, finite sequence of a user's posts. Pages are
// fetched on demand as the consumer advances, so callers can report
// progress before the full set has arrived. A stream is not
// restartable; create a new one to fetch again.
type PostStream struct {
	client   *Client
	userID   string
	limit    int
	pageSize int

	batch   []Post
	idx     int
	offset  int
	yielded int
	done    bool
	err     error
}

// Posts returns a lazy stream over up to limit posts for the user,
// fetched in API-maximum batches starting at offset 0. Server order
// is preserved.
func (c *Client) Posts(userID string, limit int) *PostStream {
	if limit <= 0 || limit > MaxPostLimit {
		limit = MaxPostLimit
	}

	return &PostStream{
		client:   c,
		userID:   userID,
		limit:    limit,
		pageSize: c.postPageSize,
	}
}

// Next advances the stream to the next post. It returns false when the
// sequence is exhausted or a page fetch failed; check Err afterwards.
func (s *PostStream) Next() bool {
	if s.err != nil || s.yielded >= s.limit {
		return false
	}

	if s.idx >= len(s.batch) {
		if s.done {
			return false
		}
		if !s.fetchPage() {
			return false
		}
	}

	s.idx++
	s.yielded++
	return true
}

// Post returns the post the stream is currently positioned at. Only
// valid after Next has returned true.
func (s *PostStream) Post() Post {
	return s.batch[s.idx-1]
}

// Err returns the error that stopped the stream early, if any. Posts
// already yielded before the failure remain valid.
func (s *PostStream) Err() error {
	return s.err
}

// fetchPage loads the next batch, returning false when no posts are
// available (end of data or fetch failure)
func (s *PostStream) fetchPage() bool {
	batch, err := s.client.FetchPosts(s.userID, s.offset, s.pageSize)
	if err != nil {
		s.err = err
		s.done = true
		return false
	}

	// A short batch means the server has no more data
	if len(batch) < s.pageSize {
		s.done = true
	}

	s.offset += s.pageSize
	s.batch = batch
	s.idx = 0
	return len(batch) > 0
}

// FetchAllPosts drains a post stream into a slice, producing up to
// limit posts. On a mid-pagination failure the posts collected so far
// are returned together with the error.
func (c *Client) FetchAllPosts(userID string, limit int) ([]Post, error) {
	stream := c.Posts(userID, limit)

	var posts []Post
	for stream.Next() {
		posts = append(posts, stream.Post())
	}

	return posts, stream.Err()
}
