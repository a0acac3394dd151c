package scraper

import (
	"fmt"
	"time"

	errs "moescrape/pkg/errors"
	"moescrape/pkg/moescape"
)

// ReplyMarker prefixes the text of reply rows so they read as nested
// under their parent comment in flat output
const ReplyMarker = "↳ "

// rowTimeFormat renders timestamps with the zone abbreviation, e.g.
// "2024-06-15 13:00:00 EEST"
const rowTimeFormat = "2006-01-02 15:04:05 MST"

// CommentRow is one flattened output row: a comment or a reply,
// carrying its post's title and public link
type CommentRow struct {
	Name      string `json:"name"`
	Comment   string `json:"comment"`
	Date      string `json:"date"`
	Likes     int    `json:"likes"`
	PostTitle string `json:"post_title"`
	PostLink  string `json:"post_link"`
}

// Normalizer flattens nested comment trees into rows, converting
// timestamps to a fixed display timezone
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a normalizer rendering timestamps in the given
// IANA timezone (e.g. "Europe/Helsinki")
func NewNormalizer(timezone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Normalizer{loc: loc}, nil
}

// NormalizeComments converts a post's raw comments into flat rows.
// Each comment yields one row followed by one row per non-nil reply,
// reply text prefixed with the reply marker. Replies deeper than one
// level are not modeled by the API.
//
// A malformed timestamp or missing author fails the whole call rather
// than defaulting, since a wrong value would misattribute the comment.
func (n *Normalizer) NormalizeComments(comments []moescape.Comment, postUUID, postTitle string) ([]CommentRow, error) {
	postLink := moescape.GetPostPageURL(postUUID)

	rows := make([]CommentRow, 0, len(comments))
	for i, comment := range comments {
		row, err := n.buildRow(comment.Profile.Name, comment.Text, comment.CreatedAt, comment.Likes, postTitle, postLink)
		if err != nil {
			return nil, fmt.Errorf("comment %d of post %s: %w", i, postUUID, err)
		}
		rows = append(rows, row)

		for j, reply := range comment.Replies {
			if reply == nil {
				// The API leaves gaps for deleted replies
				continue
			}
			row, err := n.buildRow(reply.Profile.Name, ReplyMarker+reply.Text, reply.CreatedAt, reply.Likes, postTitle, postLink)
			if err != nil {
				return nil, fmt.Errorf("reply %d to comment %d of post %s: %w", j, i, postUUID, err)
			}
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// buildRow assembles a single row, validating required fields
func (n *Normalizer) buildRow(name, text, createdAt string, likes int, postTitle, postLink string) (CommentRow, error) {
	if name == "" {
		return CommentRow{}, &errs.Error{
			Type:    errs.ErrorTypeMalformed,
			Message: "comment is missing its author name",
		}
	}

	date, err := n.formatTimestamp(createdAt)
	if err != nil {
		return CommentRow{}, err
	}

	return CommentRow{
		Name:      name,
		Comment:   text,
		Date:      date,
		Likes:     likes,
		PostTitle: postTitle,
		PostLink:  postLink,
	}, nil
}

// formatTimestamp parses an ISO8601 timestamp (Z-suffixed or with an
// explicit offset) and renders it in the display timezone
func (n *Normalizer) formatTimestamp(value string) (string, error) {
	if value == "" {
		return "", &errs.Error{
			Type:    errs.ErrorTypeMalformed,
			Message: "comment is missing its timestamp",
		}
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeMalformed,
			Message: fmt.Sprintf("malformed timestamp %q: %v", value, err),
		}
	}

	return t.In(n.loc).Format(rowTimeFormat), nil
}
