package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-kivik/kivik/v4"
)

const (
	docTypeInstructor      = "instructor"
	docTypeStudent         = "student"
	docTypeTimeline        = "timeline"
	docTypeDeletedStudent  = "deleted_student"
	docTypeDeletedTimeline = "deleted_timeline"

	designDoc = "classboard"

	// Mango defaults to 25 rows; filtered reads are unpaged.
	unpagedLimit = 5000
)

// Fixed-width UTC layout so created_at sorts lexically in Mango indexes.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// EnsureIndexes creates the Mango indexes the list queries sort on.
func EnsureIndexes(ctx context.Context, client *kivik.Client, dbName string) error {
	db := client.DB(dbName)

	indexes := map[string]interface{}{
		"by-created-at": map[string]interface{}{
			"fields": []string{"created_at"},
		},
		"by-type-owner": map[string]interface{}{
			"fields": []string{"doc_type", "instructor_id"},
		},
		"by-type-author": map[string]interface{}{
			"fields": []string{"doc_type", "author_id"},
		},
	}

	for name, index := range indexes {
		if err := db.CreateIndex(ctx, designDoc, name, index); err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}

	return nil
}

// pageQuery adds newest-first ordering and skip/limit paging to a selector.
func pageQuery(selector map[string]interface{}, page, pageSize int) map[string]interface{} {
	selector["created_at"] = map[string]interface{}{"$gt": nil}

	query := map[string]interface{}{
		"selector": selector,
		"sort":     []map[string]string{{"created_at": "desc"}},
		"limit":    unpagedLimit,
	}
	if pageSize > 0 {
		query["skip"] = page * pageSize
		query["limit"] = pageSize
	}

	return query
}

func trimDocID(docType, docID string) string {
	return strings.TrimPrefix(docID, docType+":")
}

func isNotFound(err error) bool {
	return kivik.HTTPStatus(err) == 404
}

func isConflict(err error) bool {
	return kivik.HTTPStatus(err) == 409
}
