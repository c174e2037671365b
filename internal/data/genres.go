// internal/data/genres.go
// Genre records with soft delete. Genres are never physically removed; a
// deletion timestamp hides them from every read path.
package data

import (
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
)

// Genre represents a row in the genres table.
type Genre struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"` // Soft-delete marker, hidden from responses
}

// GenreModel wraps a *sql.DB connection and provides methods for genre records.
type GenreModel struct {
	DB *sql.DB
}

// activeNameExists reports whether a non-deleted genre other than excludeID
// already uses name. Pass uuid.Nil to check against all genres.
func (m GenreModel) activeNameExists(name string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM genres
			WHERE name = $1 AND id <> $2 AND deleted_at IS NULL
		)`

	var exists bool
	err := m.DB.QueryRow(query, name, excludeID).Scan(&exists)
	return exists, err
}

// Insert adds a new genre, rejecting names already used by an active genre.
// The database-assigned id and timestamps are written back into the struct.
func (m GenreModel) Insert(genre *Genre) error {
	exists, err := m.activeNameExists(genre.Name, uuid.Nil)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateGenreName
	}

	query := `
		INSERT INTO genres (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at`

	return m.DB.QueryRow(query, genre.Name).
		Scan(&genre.ID, &genre.CreatedAt, &genre.UpdatedAt)
}

// Get retrieves a single active genre by id.
// Returns ErrRecordNotFound if the genre is absent or soft-deleted.
func (m GenreModel) Get(id uuid.UUID) (*Genre, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM genres
		WHERE id = $1 AND deleted_at IS NULL`

	var genre Genre
	err := m.DB.QueryRow(query, id).Scan(
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
	return &genre, nil
}

// GetAll retrieves a paginated list of active genres, optionally filtered by a
// case-insensitive name search and sorted by name. The WHERE and ORDER BY
// clauses depend on the request, so the query is composed with goqu; a
// count(*) OVER() window column supplies the total in the same round trip.
func (m GenreModel) GetAll(filters Filters) ([]*Genre, Metadata, error) {
	ds := goqu.Dialect(dialectPostgres).
		From("genres").
		Select(goqu.L("count(*) OVER()"), "id", "name", "created_at", "updated_at").
		Where(goqu.C("deleted_at").IsNull())

	if filters.Search != "" {
		ds = ds.Where(goqu.C("name").ILike("%" + filters.Search + "%"))
	}

	if filters.OrderBy != "" {
		if filters.descending() {
			ds = ds.Order(goqu.I(filters.OrderBy).Desc())
		} else {
			ds = ds.Order(goqu.I(filters.OrderBy).Asc())
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
	genres := []*Genre{}

	for rows.Next() {
		var genre Genre
		err := rows.Scan(
			&total, // count(*) OVER() – same value on every row
			&genre.ID,
			&genre.Name,
			&genre.CreatedAt,
			&genre.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		genres = append(genres, &genre)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return genres, calculateMetadata(total, filters.Page, filters.Limit), nil
}

// Update renames an existing genre, rejecting names used by another active
// genre. The refreshed updated_at is scanned back into the struct.
func (m GenreModel) Update(genre *Genre) error {
	exists, err := m.activeNameExists(genre.Name, genre.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateGenreName
	}

	query := `
		UPDATE genres
		SET name = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	err = m.DB.QueryRow(query, genre.Name, genre.ID).Scan(&genre.UpdatedAt)
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

// SoftDelete marks the genre as deleted by setting its deletion timestamp.
// Returns ErrRecordNotFound if the genre is absent or already deleted.
func (m GenreModel) SoftDelete(id uuid.UUID) error {
	query := `
		UPDATE genres
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
