// internal/app/system/paging/paging.go

// Package paging implements offset pagination for list endpoints. Every
// list takes optional page and limit query parameters (both 1-based
// positive integers), computes a skip of (page-1)*limit, and sorts by
// creation recency so new records surface first.
package paging

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is used when the limit parameter is absent.
const DefaultLimit = 20

// MaxLimit caps the page size so a single request cannot sweep a
// collection.
const MaxLimit = 100

// Params holds the parsed pagination inputs for one request.
type Params struct {
	Page  int
	Limit int
}

// Parse extracts page and limit from the request query. Missing values
// fall back to page 1 and DefaultLimit; a value that is present but not a
// positive integer is a 400 naming the field. Limits above MaxLimit are
// clamped.
func Parse(r *http.Request) (Params, error) {
	page, err := parsePositive(query.Get(r, "page"), "page", 1)
	if err != nil {
		return Params{}, err
	}
	limit, err := parsePositive(query.Get(r, "limit"), "limit", DefaultLimit)
	if err != nil {
		return Params{}, err
	}
	return Params{Page: page, Limit: clampLimit(limit)}, nil
}

// Skip returns the number of documents to skip for this page.
func (p Params) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Limit64 returns the page size as int64 for Mongo Find options.
func (p Params) Limit64() int64 {
	return int64(p.Limit)
}

// ApplyToFind configures Find options with skip, limit, and a descending
// sort on sortField with _id as tiebreaker so pages are stable under
// concurrent inserts.
func (p Params) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: -1},
		{Key: "_id", Value: -1},
	}).SetSkip(p.Skip()).SetLimit(p.Limit64())
}

func parsePositive(s, field string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, apperr.BadRequest(fmt.Sprintf("%s must be a positive integer", field))
	}
	return n, nil
}

func clampLimit(n int) int {
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}
