// internal/data/models.go
package data

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Models groups every database model so handlers reach all tables through a
// single dependency instead of importing sql directly.
type Models struct {
	Users  UserModel
	Genres GenreModel
	Books  BookModel
	Orders OrderModel
}

// NewModels constructs a Models value wired up to the given connection pool.
// Call this once during application startup.
func NewModels(db *sql.DB) Models {
	return Models{
		Users:  UserModel{DB: db},
		Genres: GenreModel{DB: db},
		Books:  BookModel{DB: db},
		Orders: OrderModel{DB: db},
	}
}

// dialectPostgres is the goqu dialect name used for all built queries.
const dialectPostgres = "postgres"

var (
	// ErrRecordNotFound is returned when a query finds no matching active row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user insert trips the unique email
	// constraint.
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrDuplicateGenreName is returned when another active genre already has
	// the requested name.
	ErrDuplicateGenreName = errors.New("duplicate genre name")

	// ErrDuplicateBookTitle is returned when another active book already has
	// the requested title.
	ErrDuplicateBookTitle = errors.New("duplicate book title")
)

// BookNotFoundError reports which requested book id does not exist (or is
// soft-deleted) so the caller can name it in the response.
type BookNotFoundError struct {
	ID uuid.UUID
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("Book with id %s not found", e.ID)
}

// InsufficientStockError reports which book had too little stock to satisfy an
// order line.
type InsufficientStockError struct {
	Title string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %q", e.Title)
}

// Filters holds pagination, search, and sorting parameters extracted from URL
// query strings.
type Filters struct {
	Page      int    // Current page number (1-indexed)
	Limit     int    // Number of records per page
	Search    string // Case-insensitive substring filter ("" means no filter)
	OrderBy   string // Column to sort by ("" means insertion order)
	Direction string // "asc" or "desc"; ignored when OrderBy is empty
}

// limit returns the SQL LIMIT value.
func (f Filters) limit() uint { return uint(f.Limit) }

// offset returns the SQL OFFSET value derived from Page and Limit.
func (f Filters) offset() uint { return uint((f.Page - 1) * f.Limit) }

// descending reports whether the sort direction is descending.
func (f Filters) descending() bool { return f.Direction == "desc" }

// Metadata is the pagination block returned alongside list responses.
// PrevPage and NextPage are nil (JSON null) at the edges, matching the API
// contract.
type Metadata struct {
	Page     int  `json:"page"`
	Limit    int  `json:"limit"`
	Total    int  `json:"total"`
	PrevPage *int `json:"prev_page"`
	NextPage *int `json:"next_page"`
}

// calculateMetadata computes the pagination block from the total record count
// and the requested page/limit.
func calculateMetadata(total, page, limit int) Metadata {
	meta := Metadata{
		Page:  page,
		Limit: limit,
		Total: total,
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	if page > 1 {
		prev := page - 1
		meta.PrevPage = &prev
	}
	if page < totalPages {
		next := page + 1
		meta.NextPage = &next
	}

	return meta
}
