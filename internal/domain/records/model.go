package records

import (
	"context"
	"errors"
	"time"

	"github.com/yanqian/weather-records/internal/domain/enrichment"
	"github.com/yanqian/weather-records/internal/domain/weather"
)

// ErrNotFound is returned by repositories when no record has the given id.
var ErrNotFound = errors.New("weather record not found")

// DateRange is the user supplied period a record refers to. StartDate never
// comes after EndDate for a stored record.
type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Record is a persisted weather lookup.
type Record struct {
	ID                    string                   `json:"id"`
	OriginalLocationQuery string                   `json:"originalLocationQuery"`
	ResolvedLocation      weather.ResolvedLocation `json:"resolvedLocation"`
	ResolutionMethod      weather.Method           `json:"resolutionMethod,omitempty"`
	DateRange             DateRange                `json:"dateRange"`
	WeatherData           weather.Snapshot         `json:"weatherData"`
	AdditionalData        enrichment.AuxiliaryData `json:"additionalData"`
	Tags                  []string                 `json:"tags"`
	IsPublic              bool                     `json:"isPublic"`
	CreatedAt             time.Time                `json:"createdAt"`
	UpdatedAt             time.Time                `json:"updatedAt"`
}

// SortField selects the ordering column for listings.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByLocation  SortField = "location"
	SortByStartDate SortField = "startDate"
)

// SortOrder is the listing direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery filters, sorts and pages record listings.
type ListQuery struct {
	Page      int
	Limit     int
	Location  string
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    SortField
	SortOrder SortOrder
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalRecords int  `json:"totalRecords"`
	Limit        int  `json:"limit"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

// Page is one page of a listing.
type Page struct {
	Records    []Record   `json:"records"`
	Pagination Pagination `json:"pagination"`
}

// Export is the structured export document.
type Export struct {
	ExportDate   time.Time `json:"exportDate"`
	TotalRecords int       `json:"totalRecords"`
	Records      []Record  `json:"records"`
}

// CreateRequest is the payload for saving a new record.
type CreateRequest struct {
	Location              string         `json:"location" validate:"notblank"`
	DateRange             DateRangeInput `json:"dateRange"`
	IncludeAdditionalData bool           `json:"includeAdditionalData"`
	Tags                  []string       `json:"tags"`
	IsPublic              *bool          `json:"isPublic"`
}

// DateRangeInput carries dates as YYYY-MM-DD or RFC 3339 strings.
type DateRangeInput struct {
	StartDate string `json:"startDate" validate:"required,calendardate"`
	EndDate   string `json:"endDate" validate:"required,calendardate"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Location  *string         `json:"location"`
	DateRange *DateRangePatch `json:"dateRange"`
	Tags      []string        `json:"tags"`
	IsPublic  *bool           `json:"isPublic"`
}

// DateRangePatch updates either end of a date range.
type DateRangePatch struct {
	StartDate *string `json:"startDate" validate:"omitempty,calendardate"`
	EndDate   *string `json:"endDate" validate:"omitempty,calendardate"`
}

// Repository persists records. Implementations own no business rules beyond
// filtering, ordering and paging.
type Repository interface {
	Create(ctx context.Context, record Record) error
	List(ctx context.Context, query ListQuery) ([]Record, int, error)
	Get(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, record Record) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]Record, error)
	Ping(ctx context.Context) error
}

// Archive keeps a copy of export files.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
