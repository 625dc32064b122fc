package records

import (
	"math"
	"sort"
	"strings"
	"time"
)

// NormalizeQuery applies paging defaults and bounds and replaces unknown
// sort settings with createdAt descending.
func NormalizeQuery(q ListQuery) ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Page > math.MaxInt/q.Limit {
		q.Page = math.MaxInt / q.Limit
	}
	q.Location = strings.TrimSpace(q.Location)
	switch q.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByLocation, SortByStartDate:
	default:
		q.SortBy = SortByCreatedAt
	}
	switch q.SortOrder {
	case SortAsc, SortDesc:
	default:
		q.SortOrder = SortDesc
	}
	return q
}

// Offset is the number of records skipped before the current page. It
// saturates at math.MaxInt instead of wrapping.
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// NewPagination derives page metadata. totalPages is ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalRecords: total,
		Limit:        limit,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
}

// Matches reports whether a record passes the query filters. The location
// filter is a case-insensitive substring match on the raw query or the
// resolved name. Date bounds apply to the record's start date.
func Matches(r Record, q ListQuery) bool {
	if needle := strings.ToLower(strings.TrimSpace(q.Location)); needle != "" {
		raw := strings.ToLower(r.OriginalLocationQuery)
		resolved := strings.ToLower(r.ResolvedLocation.Name)
		if !strings.Contains(raw, needle) && !strings.Contains(resolved, needle) {
			return false
		}
	}
	start := r.DateRange.StartDate
	if q.StartDate != nil && start.Before(*q.StartDate) {
		return false
	}
	if q.EndDate != nil && start.After(*q.EndDate) {
		return false
	}
	return true
}

// SortRecords orders records in place. Ties fall back to id so pages are stable.
func SortRecords(items []Record, field SortField, order SortOrder) {
	less := func(a, b Record) int {
		switch field {
		case SortByUpdatedAt:
			return compareTime(a.UpdatedAt, b.UpdatedAt)
		case SortByLocation:
			return strings.Compare(strings.ToLower(a.OriginalLocationQuery), strings.ToLower(b.OriginalLocationQuery))
		case SortByStartDate:
			return compareTime(a.DateRange.StartDate, b.DateRange.StartDate)
		default:
			return compareTime(a.CreatedAt, b.CreatedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if c == 0 {
			c = strings.Compare(items[i].ID, items[j].ID)
		}
		if order == SortAsc {
			return c < 0
		}
		return c > 0
	})
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
