package data

import (
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// testSchema resets every table this package touches. gen_random_uuid() needs
// PostgreSQL 13 or newer.
const testSchema = `
DROP TABLE IF EXISTS order_items, orders, books, genres, users CASCADE;

CREATE TABLE users (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	email text UNIQUE NOT NULL,
	password_hash bytea NOT NULL,
	username text,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE genres (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	name text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	deleted_at timestamptz
);

CREATE TABLE books (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	title text NOT NULL,
	writer text NOT NULL,
	publisher text NOT NULL,
	publication_year integer NOT NULL,
	description text NOT NULL DEFAULT '',
	price numeric(10,2) NOT NULL CHECK (price >= 0),
	stock_quantity integer NOT NULL CHECK (stock_quantity >= 0),
	genre_id uuid NOT NULL REFERENCES genres(id),
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now(),
	deleted_at timestamptz
);

CREATE TABLE orders (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id uuid NOT NULL REFERENCES users(id),
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE order_items (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	order_id uuid NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	book_id uuid NOT NULL REFERENCES books(id),
	quantity integer NOT NULL CHECK (quantity > 0)
);
`

// newTestModels connects to the database named by TEST_DB_DSN and resets the
// schema, giving every test a clean slate. Tests that need a live database
// skip when the variable is unset.
func newTestModels(t *testing.T) Models {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("set TEST_DB_DSN to run database integration tests")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Ping())

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return NewModels(db)
}

func createTestUser(t *testing.T, m Models, email string) *User {
	t.Helper()

	user := &User{Email: email}
	require.NoError(t, user.Password.Set("pa55word"))
	require.NoError(t, m.Users.Insert(user))
	return user
}

func createTestGenre(t *testing.T, m Models, name string) *Genre {
	t.Helper()

	genre := &Genre{Name: name}
	require.NoError(t, m.Genres.Insert(genre))
	return genre
}

func createTestBook(t *testing.T, m Models, genre *Genre, title string, stock int) *Book {
	t.Helper()

	book := &Book{
		Title:           title,
		Writer:          "Test Writer",
		Publisher:       "Test Publisher",
		PublicationYear: 2020,
		Price:           19.99,
		StockQuantity:   stock,
		GenreID:         genre.ID,
	}
	require.NoError(t, m.Books.Insert(book))
	return book
}
