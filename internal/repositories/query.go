package repositories

import (
	"errors"
	"math"
	"strings"
)

const (
	// DefaultPageLimit is applied when a listing request omits a limit.
	DefaultPageLimit = 10
	// MaxPageLimit caps the number of items returned by a single listing.
	MaxPageLimit = 100
	// MaxPageNumber keeps Skip within int64 at the largest page size.
	MaxPageNumber = math.MaxInt64 / MaxPageLimit
)

var (
	// ErrInvalidSortField indicates a sort key outside the whitelist.
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrInvalidSortDirection indicates a sort direction other than asc/desc/1/-1.
	ErrInvalidSortDirection = errors.New("invalid sort direction")
)

// Sort keys accepted by video listings.
const (
	SortByCreatedAt = "createdAt"
	SortByViews     = "views"
	SortByDuration  = "duration"
	SortByTitle     = "title"
)

var videoSortColumns = map[string]string{
	SortByCreatedAt: "created_at",
	SortByViews:     "views",
	SortByDuration:  "duration",
	SortByTitle:     "title",
}

// Page is a 1-based page number with a page size.
type Page struct {
	Number int
	Limit  int
}

// Normalize applies defaults and bounds to the page.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Skip returns the number of items preceding the page.
func (p Page) Skip() int64 {
	p = p.Normalize()
	return int64(p.Number-1) * int64(p.Limit)
}

// VideoQuery describes a published-video listing.
type VideoQuery struct {
	Page     Page
	Search   string
	OwnerID  string
	SortBy   string
	SortDesc bool
}

// ParseSort validates a sort key and direction. Empty values select
// createdAt descending.
func ParseSort(sortBy, sortType string) (string, bool, error) {
	if sortBy == "" {
		sortBy = SortByCreatedAt
	}
	if _, ok := videoSortColumns[sortBy]; !ok {
		return "", false, ErrInvalidSortField
	}

	switch strings.ToLower(strings.TrimSpace(sortType)) {
	case "", "desc", "-1":
		return sortBy, true, nil
	case "asc", "1":
		return sortBy, false, nil
	default:
		return "", false, ErrInvalidSortDirection
	}
}

// VideoChanges lists the editable video fields. Empty values keep the stored value.
type VideoChanges struct {
	Title       string
	Description string
	Thumbnail   string
}

func sortColumn(sortBy string) string {
	if col, ok := videoSortColumns[sortBy]; ok {
		return col
	}
	return videoSortColumns[SortByCreatedAt]
}
