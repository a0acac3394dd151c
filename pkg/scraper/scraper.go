package scraper

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"moescrape/pkg/config"
	errs "moescrape/pkg/errors"
	"moescrape/pkg/logger"
	"moescrape/pkg/moescape"
	"moescrape/pkg/ratelimit"
	"moescrape/pkg/retry"
)

// Order selects how posts are sorted before their comments are fetched
type Order string

const (
	// OrderNewestFirst processes the most recently created posts first
	OrderNewestFirst Order = "newest"
	// OrderOldestFirst processes the oldest posts first
	OrderOldestFirst Order = "oldest"
)

// ScanRequest describes one pipeline run. Validated before any
// network call is made.
type ScanRequest struct {
	UserID   string `validate:"required"`
	NumPosts int    `validate:"min=1,max=2000"`
	Order    Order  `validate:"required,oneof=newest oldest"`
}

// Result aggregates the output of a pipeline run
type Result struct {
	// Posts covered by the run, in processing order
	Posts []moescape.Post
	// Rows holds the flattened comments, grouped by post in
	// processing order
	Rows []CommentRow
	// Status carries a human-readable summary when the run produced
	// nothing ("no posts found", "no comments found")
	Status string
	// Warnings lists non-fatal problems: partial pagination, posts
	// whose comments could not be fetched
	Warnings []string
}

// ProgressFunc receives the completed fraction of the run in [0,1]
// after each post has been processed
type ProgressFunc func(fraction float64)

// PostDoneFunc receives each processed post together with the rows it
// contributed. Rows is nil when the post was skipped.
type PostDoneFunc func(post moescape.Post, rows []CommentRow)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Scraper orchestrates the posts-and-comments pipeline: paginate the
// user's posts, order and cap them, fetch each post's comments and
// flatten them into rows.
type Scraper struct {
	client     ContentClient
	normalizer *Normalizer
	logger     logger.Logger
	rate       ratelimit.Controller
	maxPosts   int
	progress   ProgressFunc
	postDone   PostDoneFunc
}

// New creates a Scraper wired to the live Moescape API per the config
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	rate := ratelimit.NewAdaptive(
		cfg.RateLimit.InitialRate,
		cfg.RateLimit.MaxRate,
		cfg.RateLimit.AdaptFactor,
		cfg.RateLimit.MaxJitter,
	)

	client := moescape.NewClient(rate, moescape.ClientOptions{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:  cfg.Retry.BaseDelay,
			MaxDelay:   cfg.Retry.MaxDelay,
			Multiplier: 2.0,
		},
		MaxAttempts:  cfg.Retry.MaxAttempts,
		PostPageSize: cfg.Scan.PostBatchSize,
		CommentLimit: cfg.Scan.CommentLimit,
	}, log)

	normalizer, err := NewNormalizer(cfg.Output.Timezone)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		client:     apiClient{client},
		normalizer: normalizer,
		logger:     log,
		rate:       rate,
		maxPosts:   cfg.Scan.MaxPosts,
	}, nil
}

// NewWithClient creates a Scraper on top of an existing client,
// rendering timestamps in the given timezone
func NewWithClient(client ContentClient, timezone string, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	normalizer, err := NewNormalizer(timezone)
	if err != nil {
		return nil, err
	}
	return &Scraper{
		client:     client,
		normalizer: normalizer,
		logger:     log,
		maxPosts:   moescape.MaxPostLimit,
	}, nil
}

// SetProgress registers a callback receiving the run's completed fraction
func (s *Scraper) SetProgress(fn ProgressFunc) {
	s.progress = fn
}

// SetPostDone registers a callback invoked after each post, skipped
// or not, with the rows the post contributed
func (s *Scraper) SetPostDone(fn PostDoneFunc) {
	s.postDone = fn
}

// Rate returns the current request rate in requests per second, zero
// when the scraper has no rate controller of its own
func (s *Scraper) Rate() float64 {
	if s.rate == nil {
		return 0
	}
	return s.rate.Rate()
}

// Scan runs the pipeline for one user and returns the aggregated rows
func (s *Scraper) Scan(req ScanRequest) (*Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeValidation,
			Message: fmt.Sprintf("invalid scan request: %v", err),
		}
	}

	s.logger.InfoWithFields("starting scan", map[string]interface{}{
		"user_id":   req.UserID,
		"num_posts": req.NumPosts,
		"order":     string(req.Order),
	})

	result := &Result{}

	posts, err := s.collectPosts(req, result)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		result.Status = "no posts found"
		s.logger.WarnWithFields("scan produced no posts", map[string]interface{}{
			"user_id": req.UserID,
		})
		return result, nil
	}

	// Sort before applying the cap so "N posts" means the N newest
	// (or oldest) regardless of the order the API served them in
	sortPosts(posts, req.Order)
	if len(posts) > req.NumPosts {
		posts = posts[:req.NumPosts]
	}
	result.Posts = posts

	for i, post := range posts {
		rows, err := s.processPost(post)
		if err != nil {
			// One post's failure must not sink the whole run
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"post_uuid": post.UUID,
			}).Warn("skipping post")
			result.Warnings = append(result.Warnings, fmt.Sprintf("post %q skipped: %v", post.Title, err))
		} else {
			result.Rows = append(result.Rows, rows...)
		}

		if s.postDone != nil {
			s.postDone(post, rows)
		}
		s.reportProgress(i+1, len(posts))
	}

	if len(result.Rows) == 0 {
		result.Status = "no comments found"
	}

	s.logger.InfoWithFields("scan completed", map[string]interface{}{
		"user_id": req.UserID,
		"posts":   len(result.Posts),
		"rows":    len(result.Rows),
	})

	return result, nil
}

// collectPosts drains the lazy post stream up to the configured post
// cap. A mid-pagination failure keeps the partial set and records a
// warning unless nothing was collected at all.
func (s *Scraper) collectPosts(req ScanRequest, result *Result) ([]moescape.Post, error) {
	limit := s.maxPosts
	if limit <= 0 || limit > moescape.MaxPostLimit {
		limit = moescape.MaxPostLimit
	}
	stream := s.client.PostStream(req.UserID, limit)

	var posts []moescape.Post
	for stream.Next() {
		posts = append(posts, stream.Post())
	}

	if err := stream.Err(); err != nil {
		if len(posts) == 0 {
			return nil, fmt.Errorf("failed to fetch posts: %w", err)
		}
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"user_id":   req.UserID,
			"collected": len(posts),
		}).Warn("pagination stopped early, continuing with partial set")
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("pagination stopped after %d posts: %v", len(posts), err))
	}

	return posts, nil
}

// processPost fetches and flattens one post's comments
func (s *Scraper) processPost(post moescape.Post) ([]CommentRow, error) {
	comments, err := s.client.FetchComments(post.UUID)
	if err != nil {
		return nil, err
	}

	rows, err := s.normalizer.NormalizeComments(comments, post.UUID, post.Title)
	if err != nil {
		return nil, err
	}

	s.logger.DebugWithFields("post processed", map[string]interface{}{
		"post_uuid": post.UUID,
		"comments":  len(comments),
		"rows":      len(rows),
	})

	return rows, nil
}

func (s *Scraper) reportProgress(done, total int) {
	if s.progress != nil && total > 0 {
		s.progress(float64(done) / float64(total))
	}
}

// sortPosts orders posts by creation time, stable so posts with equal
// timestamps keep their fetch order
func sortPosts(posts []moescape.Post, order Order) {
	sort.SliceStable(posts, func(i, j int) bool {
		ti := parseCreatedAt(posts[i].CreatedAt)
		tj := parseCreatedAt(posts[j].CreatedAt)
		if order == OrderNewestFirst {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
}

// parseCreatedAt parses a post timestamp, treating unparseable values
// as the zero time so they sort consistently instead of panicking
func parseCreatedAt(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
