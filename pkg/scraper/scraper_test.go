package scraper

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "moescrape/pkg/errors"
	"moescrape/pkg/logger"
	"moescrape/pkg/moescape"
	"moescrape/pkg/ratelimit"
)

// sliceIterator serves a fixed post slice, optionally failing after
// a number of posts to simulate a broken pagination run
type sliceIterator struct {
	posts     []moescape.Post
	idx       int
	failAfter int
	err       error
}

func (it *sliceIterator) Next() bool {
	if it.err != nil && it.idx >= it.failAfter {
		return false
	}
	return it.idx < len(it.posts)
}

func (it *sliceIterator) Post() moescape.Post {
	p := it.posts[it.idx]
	it.idx++
	return p
}

func (it *sliceIterator) Err() error {
	if it.err != nil && it.idx >= it.failAfter {
		return it.err
	}
	return nil
}

type mockClient struct {
	posts       []moescape.Post
	streamErr   error
	failAfter   int
	comments    map[string][]moescape.Comment
	commentErr  map[string]error
	fetched     []string
	streamLimit int
}

func (m *mockClient) PostStream(userID string, limit int) PostIterator {
	m.streamLimit = limit
	posts := m.posts
	if limit < len(posts) {
		posts = posts[:limit]
	}
	return &sliceIterator{posts: posts, failAfter: m.failAfter, err: m.streamErr}
}

func (m *mockClient) FetchComments(postUUID string) ([]moescape.Comment, error) {
	m.fetched = append(m.fetched, postUUID)
	if err, ok := m.commentErr[postUUID]; ok {
		return nil, err
	}
	return m.comments[postUUID], nil
}

func testComment(name, text, createdAt string) moescape.Comment {
	return moescape.Comment{
		Profile:   moescape.Profile{Name: name},
		Text:      text,
		CreatedAt: createdAt,
	}
}

func testPost(uuid, title, createdAt string) moescape.Post {
	return moescape.Post{UUID: uuid, Title: title, CreatedAt: createdAt}
}

func newTestScraper(t *testing.T, client ContentClient) *Scraper {
	t.Helper()
	s, err := NewWithClient(client, "Europe/Helsinki", logger.NewTestLogger())
	require.NoError(t, err)
	return s
}

func TestScanValidatesRequest(t *testing.T) {
	s := newTestScraper(t, &mockClient{})

	tests := []struct {
		name string
		req  ScanRequest
	}{
		{"missing user", ScanRequest{NumPosts: 5, Order: OrderNewestFirst}},
		{"zero posts", ScanRequest{UserID: "u1", NumPosts: 0, Order: OrderNewestFirst}},
		{"too many posts", ScanRequest{UserID: "u1", NumPosts: 5000, Order: OrderNewestFirst}},
		{"bad order", ScanRequest{UserID: "u1", NumPosts: 5, Order: "random"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Scan(tt.req)
			require.Error(t, err)
			var apiErr *errs.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)
		})
	}
}

func TestScanNewestFirst(t *testing.T) {
	client := &mockClient{
		posts: []moescape.Post{
			testPost("p-old", "Old", "2024-01-01T00:00:00Z"),
			testPost("p-new", "New", "2024-06-01T00:00:00Z"),
			testPost("p-mid", "Mid", "2024-03-01T00:00:00Z"),
		},
		comments: map[string][]moescape.Comment{
			"p-new": {testComment("alice", "first", "2024-06-02T00:00:00Z")},
			"p-mid": {testComment("bob", "second", "2024-03-02T00:00:00Z")},
			"p-old": {testComment("carol", "third", "2024-01-02T00:00:00Z")},
		},
	}
	s := newTestScraper(t, client)

	result, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderNewestFirst})
	require.NoError(t, err)

	assert.Equal(t, []string{"p-new", "p-mid", "p-old"}, client.fetched)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, "first", result.Rows[0].Comment)
	assert.Equal(t, "third", result.Rows[2].Comment)
	assert.Empty(t, result.Status)
	assert.Empty(t, result.Warnings)
}

func TestScanOldestFirst(t *testing.T) {
	client := &mockClient{
		posts: []moescape.Post{
			testPost("p-new", "New", "2024-06-01T00:00:00Z"),
			testPost("p-old", "Old", "2024-01-01T00:00:00Z"),
		},
	}
	s := newTestScraper(t, client)

	result, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderOldestFirst})
	require.NoError(t, err)

	assert.Equal(t, []string{"p-old", "p-new"}, client.fetched)
	assert.Equal(t, "no comments found", result.Status)
}

func TestScanHonorsPostCap(t *testing.T) {
	var posts []moescape.Post
	for i := 0; i < 10; i++ {
		posts = append(posts, testPost(fmt.Sprintf("p%d", i), fmt.Sprintf("Post %d", i), "2024-01-01T00:00:00Z"))
	}
	client := &mockClient{posts: posts}
	s := newTestScraper(t, client)

	result, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 4, Order: OrderNewestFirst})
	require.NoError(t, err)
	assert.Len(t, result.Posts, 4)
	// Equal timestamps keep fetch order through the stable sort
	assert.Equal(t, []string{"p0", "p1", "p2", "p3"}, client.fetched)
}

func TestScanCapAppliesAfterSorting(t *testing.T) {
	// Posts arrive in arbitrary API order; the cap must select the
	// most recent ones, not the first ones served
	client := &mockClient{
		posts: []moescape.Post{
			testPost("p-old", "Old", "2024-01-01T00:00:00Z"),
			testPost("p-new", "New", "2024-06-01T00:00:00Z"),
			testPost("p-mid", "Mid", "2024-03-01T00:00:00Z"),
		},
		comments: map[string][]moescape.Comment{
			"p-new": {testComment("alice", "newest", "2024-06-02T00:00:00Z")},
			"p-mid": {testComment("bob", "middle", "2024-03-02T00:00:00Z")},
			"p-old": {testComment("carol", "oldest", "2024-01-02T00:00:00Z")},
		},
	}
	s := newTestScraper(t, client)

	result, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 2, Order: OrderNewestFirst})
	require.NoError(t, err)

	assert.Equal(t, []string{"p-new", "p-mid"}, client.fetched)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "newest", result.Rows[0].Comment)
	assert.Equal(t, "middle", result.Rows[1].Comment)
}

func TestScanNoPosts(t *testing.T) {
	s := newTestScraper(t, &mockClient{})

	result, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 5, Order: OrderNewestFirst})
	require.NoError(t, err)
	assert.Equal(t, "no posts found", result.Status)
	assert.Empty(t, result.Rows)
}

func TestScanPaginationFailureKeepsPartialSet(t *testing.T) {
	client := &mockClient{
		posts: []moescape.Post{
			testPost("p1", "One", "2024-01-01T00:00:00Z"),
			testPost("p2", "Two", "2024-02-01T00:00:00Z"),
			testPost("p3", "Three", "2024-03-01T00:00:00Z"),
		},
		failAfter: 2,
		streamErr: &errs.Error{Type: errs.ErrorTypeServerError, Message: "upstream error"},
	}
	s := newTestScraper(t, client)

	result, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderNewestFirst})
	require.NoError(t, err)
	assert.Len(t, result.Posts, 2)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "pagination stopped after 2 posts")
}

func TestScanPaginationFailureWithNothingCollected(t *testing.T) {
	client := &mockClient{
		posts:     []moescape.Post{testPost("p1", "One", "2024-01-01T00:00:00Z")},
		failAfter: 0,
		streamErr: &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection refused"},
	}
	s := newTestScraper(t, client)

	_, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderNewestFirst})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch posts")
}

func TestScanSkipsFailingPost(t *testing.T) {
	client := &mockClient{
		posts: []moescape.Post{
			testPost("p1", "One", "2024-02-01T00:00:00Z"),
			testPost("p2", "Two", "2024-01-01T00:00:00Z"),
		},
		comments: map[string][]moescape.Comment{
			"p2": {testComment("alice", "survives", "2024-01-02T00:00:00Z")},
		},
		commentErr: map[string]error{
			"p1": &errs.Error{Type: errs.ErrorTypeServerError, Message: "boom"},
		},
	}
	s := newTestScraper(t, client)

	result, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderNewestFirst})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "survives", result.Rows[0].Comment)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `post "One" skipped`)
}

func TestScanReportsProgress(t *testing.T) {
	client := &mockClient{
		posts: []moescape.Post{
			testPost("p1", "One", "2024-01-01T00:00:00Z"),
			testPost("p2", "Two", "2024-02-01T00:00:00Z"),
			testPost("p3", "Three", "2024-03-01T00:00:00Z"),
			testPost("p4", "Four", "2024-04-01T00:00:00Z"),
		},
	}
	s := newTestScraper(t, client)

	var fractions []float64
	s.SetProgress(func(f float64) {
		fractions = append(fractions, f)
	})

	_, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderNewestFirst})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1.0}, fractions)
}

func TestScanUsesConfiguredPostCap(t *testing.T) {
	client := &mockClient{
		posts: []moescape.Post{
			testPost("p1", "One", "2024-01-01T00:00:00Z"),
			testPost("p2", "Two", "2024-02-01T00:00:00Z"),
			testPost("p3", "Three", "2024-03-01T00:00:00Z"),
		},
	}
	s := newTestScraper(t, client)
	s.maxPosts = 2

	result, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderNewestFirst})
	require.NoError(t, err)
	assert.Equal(t, 2, client.streamLimit, "pagination must honor the configured cap")
	assert.Len(t, result.Posts, 2)
}

func TestScanDefaultPostCap(t *testing.T) {
	client := &mockClient{}
	s := newTestScraper(t, client)

	_, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderNewestFirst})
	require.NoError(t, err)
	assert.Equal(t, moescape.MaxPostLimit, client.streamLimit)
}

func TestScanPostDoneHook(t *testing.T) {
	client := &mockClient{
		posts: []moescape.Post{
			testPost("p1", "One", "2024-02-01T00:00:00Z"),
			testPost("p2", "Two", "2024-01-01T00:00:00Z"),
		},
		comments: map[string][]moescape.Comment{
			"p1": {
				testComment("alice", "first", "2024-02-02T00:00:00Z"),
				testComment("bob", "second", "2024-02-03T00:00:00Z"),
			},
		},
		commentErr: map[string]error{
			"p2": fmt.Errorf("comments unavailable"),
		},
	}
	s := newTestScraper(t, client)

	var order []string
	var rowCounts []int
	s.SetPostDone(func(post moescape.Post, rows []CommentRow) {
		order = append(order, post.UUID)
		rowCounts = append(rowCounts, len(rows))
	})

	_, err := s.Scan(ScanRequest{UserID: "u1", NumPosts: 10, Order: OrderNewestFirst})
	require.NoError(t, err)

	// The hook fires for skipped posts too, with zero rows
	assert.Equal(t, []string{"p1", "p2"}, order)
	assert.Equal(t, []int{2, 0}, rowCounts)
}

func TestScraperRate(t *testing.T) {
	s := newTestScraper(t, &mockClient{})
	assert.Zero(t, s.Rate(), "no rate controller means no rate to report")

	s.rate = ratelimit.NewAdaptive(1.5, 2.0, 1.1, 0)
	assert.InDelta(t, 1.5, s.Rate(), 1e-9)
}
