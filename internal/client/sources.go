package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"classboard/internal/domain"
	"classboard/internal/listsync"
)

// TimelineIdentity scopes the feed of one author.
func TimelineIdentity(authorID string) listsync.Identity {
	return listsync.Identity{Collection: domain.CollectionTimeline, Owner: authorID}
}

// StudentIdentity scopes the roster of one instructor.
func StudentIdentity(instructorID string) listsync.Identity {
	return listsync.Identity{Collection: domain.CollectionStudents, Owner: instructorID}
}

// ErrNotArray is returned when a collection read answers 2xx with anything
// but a JSON array. An empty array ends paging, so an empty or null body must
// not pass for one.
var ErrNotArray = errors.New("collection body is not a JSON array")

func fetchList[R any](ctx context.Context, c *Client, op, path string, query url.Values) ([]R, error) {
	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}
	body := bytes.TrimSpace(raw)
	if len(body) == 0 || body[0] != '[' {
		return nil, fmt.Errorf("%s: decode response: %w", op, ErrNotArray)
	}
	records := []R{}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return records, nil
}

func pageQuery(page int) url.Values {
	return url.Values{"page": {strconv.Itoa(page)}}
}

// tagQuery sends every token as its own tags value.
func tagQuery(tokens []string) url.Values {
	q := url.Values{}
	for _, t := range tokens {
		q.Add("tags", t)
	}
	return q
}

type TimelineSource struct {
	client *Client
}

func NewTimelineSource(c *Client) *TimelineSource {
	return &TimelineSource{client: c}
}

func (s *TimelineSource) FetchPage(ctx context.Context, id listsync.Identity, page int) ([]domain.Timeline, error) {
	q := pageQuery(page)
	if id.Owner != "" {
		q.Set("author", id.Owner)
	}

	return fetchList[domain.Timeline](ctx, s.client, "fetch timeline page", "/timeline", q)
}

func (s *TimelineSource) FetchFiltered(ctx context.Context, id listsync.Identity, tokens []string) ([]domain.Timeline, error) {
	q := tagQuery(tokens)
	if id.Owner != "" {
		q.Set("author", id.Owner)
	}

	return fetchList[domain.Timeline](ctx, s.client, "search timeline", "/timeline", q)
}

// StudentSource reads the roster of the authenticated instructor. The
// identity owner only scopes the cache.
type StudentSource struct {
	client *Client
}

func NewStudentSource(c *Client) *StudentSource {
	return &StudentSource{client: c}
}

func (s *StudentSource) FetchPage(ctx context.Context, id listsync.Identity, page int) ([]domain.Student, error) {
	return fetchList[domain.Student](ctx, s.client, "fetch roster page", "/students", pageQuery(page))
}

func (s *StudentSource) FetchFiltered(ctx context.Context, id listsync.Identity, tokens []string) ([]domain.Student, error) {
	return fetchList[domain.Student](ctx, s.client, "search roster", "/students", tagQuery(tokens))
}
