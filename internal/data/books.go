// internal/data/books.go
// Book records with soft delete. Every read path filters on deleted_at so a
// removed book is invisible to the catalog and to order placement alike.
package data

import (
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// Book represents a row in the books table. Genre is populated on read paths
// that join the genres table.
type Book struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Writer          string     `json:"writer"`
	Publisher       string     `json:"publisher"`
	PublicationYear int        `json:"publication_year"`
	Description     string     `json:"description"` // Optional; empty string is allowed
	Price           float64    `json:"price"`
	StockQuantity   int        `json:"stock_quantity"`
	GenreID         uuid.UUID  `json:"genre_id"`
	Genre           *Genre     `json:"genre,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"-"`
}

// BookModel wraps a *sql.DB connection and provides methods for book records.
type BookModel struct {
	DB *sql.DB
}

// activeTitleExists reports whether a non-deleted book other than excludeID
// already uses title. Pass uuid.Nil to check against all books.
func (m BookModel) activeTitleExists(title string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM books
			WHERE title = $1 AND id <> $2 AND deleted_at IS NULL
		)`

	var exists bool
	err := m.DB.QueryRow(query, title, excludeID).Scan(&exists)
	return exists, err
}

// Insert adds a new book, rejecting titles already used by an active book.
// The database-assigned id and timestamps are written back into the struct.
func (m BookModel) Insert(book *Book) error {
	exists, err := m.activeTitleExists(book.Title, uuid.Nil)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateBookTitle
	}

	query := `
		INSERT INTO books (title, writer, publisher, publication_year, description, price, stock_quantity, genre_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return m.DB.QueryRow(
		query,
		book.Title,
		book.Writer,
		book.Publisher,
		book.PublicationYear,
		book.Description,
		book.Price,
		book.StockQuantity,
		book.GenreID,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
}

// Get retrieves a single active book by id with its genre attached.
// Returns ErrRecordNotFound if the book is absent or soft-deleted.
func (m BookModel) Get(id uuid.UUID) (*Book, error) {
	query := `
		SELECT b.id, b.title, b.writer, b.publisher, b.publication_year, b.description,
		       b.price, b.stock_quantity, b.genre_id, b.created_at, b.updated_at,
		       g.id, g.name, g.created_at, g.updated_at
		FROM books b
		JOIN genres g ON g.id = b.genre_id
		WHERE b.id = $1 AND b.deleted_at IS NULL`

	var book Book
	var genre Genre
	err := m.DB.QueryRow(query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Writer,
		&book.Publisher,
		&book.PublicationYear,
		&book.Description,
		&book.Price,
		&book.StockQuantity,
		&book.GenreID,
		&book.CreatedAt,
		&book.UpdatedAt,
		&genre.ID,
		&genre.Name,
		&genre.CreatedAt,
		&genre.UpdatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	book.Genre = &genre
	return &book, nil
}

// GetAll retrieves a paginated list of active books with their genres.
// genreID narrows the list to one genre (uuid.Nil means all genres); Search
// matches title, writer, or publisher case-insensitively; OrderBy may be
// "title" or "publication_year". The clause set varies per request, so the
// query is composed with goqu.
func (m BookModel) GetAll(genreID uuid.UUID, filters Filters) ([]*Book, Metadata, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("books").As("b")).
		Join(goqu.T("genres").As("g"), goqu.On(goqu.I("g.id").Eq(goqu.I("b.genre_id")))).
		Select(
			goqu.L("count(*) OVER()"),
			goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.writer"), goqu.I("b.publisher"),
			goqu.I("b.publication_year"), goqu.I("b.description"), goqu.I("b.price"),
			goqu.I("b.stock_quantity"), goqu.I("b.genre_id"),
			goqu.I("b.created_at"), goqu.I("b.updated_at"),
			goqu.I("g.id"), goqu.I("g.name"), goqu.I("g.created_at"), goqu.I("g.updated_at"),
		).
		Where(goqu.I("b.deleted_at").IsNull())

	if genreID != uuid.Nil {
		ds = ds.Where(goqu.I("b.genre_id").Eq(genreID))
	}

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("b.title").ILike(pattern),
			goqu.I("b.writer").ILike(pattern),
			goqu.I("b.publisher").ILike(pattern),
		))
	}

	if filters.OrderBy != "" {
		col := goqu.I("b." + filters.OrderBy)
		if filters.descending() {
			ds = ds.Order(col.Desc(), goqu.I("b.id").Asc())
		} else {
			ds = ds.Order(col.Asc(), goqu.I("b.id").Asc())
		}
	}

	ds = ds.Limit(filters.limit()).Offset(filters.offset())

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, Metadata{}, err
	}

	rows, err := m.DB.Query(query, args...)
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	total := 0
	books := []*Book{}

	for rows.Next() {
		var book Book
		var genre Genre
		err := rows.Scan(
			&total,
			&book.ID,
			&book.Title,
			&book.Writer,
			&book.Publisher,
			&book.PublicationYear,
			&book.Description,
			&book.Price,
			&book.StockQuantity,
			&book.GenreID,
			&book.CreatedAt,
			&book.UpdatedAt,
			&genre.ID,
			&genre.Name,
			&genre.CreatedAt,
			&genre.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		book.Genre = &genre
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return books, calculateMetadata(total, filters.Page, filters.Limit), nil
}

// Update persists the mutable fields of book (description, price, stock
// quantity). The refreshed updated_at is scanned back into the struct.
func (m BookModel) Update(book *Book) error {
	query := `
		UPDATE books
		SET description = $1, price = $2, stock_quantity = $3, updated_at = now()
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING updated_at`

	err := m.DB.QueryRow(query, book.Description, book.Price, book.StockQuantity, book.ID).
		Scan(&book.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}

// SoftDelete marks the book as deleted by setting its deletion timestamp.
// Returns ErrRecordNotFound if the book is absent or already deleted.
func (m BookModel) SoftDelete(id uuid.UUID) error {
	query := `
		UPDATE books
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := m.DB.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// getBookForUpdate loads an active book's id, title, and stock inside tx,
// locking the row with FOR UPDATE. The lock serializes concurrent placements
// targeting the same book, so the stock check below cannot race a decrement
// committed by another transaction.
func getBookForUpdate(tx *sql.Tx, id uuid.UUID) (*Book, error) {
	query := `
		SELECT id, title, stock_quantity
		FROM books
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`

	var book Book
	err := tx.QueryRow(query, id).Scan(&book.ID, &book.Title, &book.StockQuantity)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, &BookNotFoundError{ID: id}
		default:
			return nil, err
		}
	}
	return &book, nil
}

// decrementBookStock reduces a book's stock by quantity inside tx. The caller
// must hold the row lock from getBookForUpdate and have verified the stock is
// sufficient; the WHERE clause re-checks it as a final guard against a
// negative quantity reaching the table.
func decrementBookStock(tx *sql.Tx, id uuid.UUID, quantity int) error {
	query := `
		UPDATE books
		SET stock_quantity = stock_quantity - $1, updated_at = now()
		WHERE id = $2 AND stock_quantity >= $1`

	result, err := tx.Exec(query, quantity, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
