// cmd/api/books.go
// Handlers for the book catalog. Only description, price, and stock quantity
// are mutable after creation; everything else is fixed at insert time.
package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/mirahayu/bookstore-api/internal/data"
	"github.com/mirahayu/bookstore-api/internal/validator"

	"github.com/google/uuid"
)

// createBookHandler handles POST /books.
// Required fields use pointer types so that an absent field and a zero value
// can be told apart; description is optional and may be the empty string.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title           string    `json:"title"`
		Writer          string    `json:"writer"`
		Publisher       string    `json:"publisher"`
		PublicationYear *int      `json:"publication_year"`
		Description     *string   `json:"description"`
		Price           *float64  `json:"price"`
		StockQuantity   *int      `json:"stock_quantity"`
		GenreID         uuid.UUID `json:"genre_id"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Title != "", "title", "must be provided")
	v.Check(input.Writer != "", "writer", "must be provided")
	v.Check(input.Publisher != "", "publisher", "must be provided")
	v.Check(input.PublicationYear != nil, "publication_year", "must be provided")
	if input.PublicationYear != nil {
		v.Check(*input.PublicationYear > 0, "publication_year", "must be a positive year")
		v.Check(*input.PublicationYear <= time.Now().Year(), "publication_year", "must not be in the future")
	}
	v.Check(input.Price != nil, "price", "must be provided")
	if input.Price != nil {
		v.Check(*input.Price >= 0, "price", "must not be negative")
	}
	v.Check(input.StockQuantity != nil, "stock_quantity", "must be provided")
	if input.StockQuantity != nil {
		v.Check(*input.StockQuantity >= 0, "stock_quantity", "must not be negative")
	}
	v.Check(input.GenreID != uuid.Nil, "genre_id", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	// The genre must exist and be active; a soft-deleted genre cannot gain
	// new books.
	_, err = app.models.Genres.Get(input.GenreID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusBadRequest, "Genre not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	book := &data.Book{
		Title:           input.Title,
		Writer:          input.Writer,
		Publisher:       input.Publisher,
		PublicationYear: *input.PublicationYear,
		Price:           *input.Price,
		StockQuantity:   *input.StockQuantity,
		GenreID:         input.GenreID,
	}
	if input.Description != nil {
		book.Description = *input.Description
	}

	err = app.models.Books.Insert(book)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateBookTitle):
			app.errorResponse(w, r, http.StatusBadRequest, "Book title already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Book added successfully",
		"data": envelope{
			"id":         book.ID,
			"title":      book.Title,
			"created_at": book.CreatedAt,
		},
	}
	err = app.writeJSON(w, http.StatusCreated, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// readBookFilters extracts the shared pagination/search/sort parameters for
// the book list endpoints. The search term matches title, writer, or
// publisher; orderByTitle takes precedence over orderByPublishDate when both
// are sent. Invalid order values are ignored.
func (app *applicationDependencies) readBookFilters(r *http.Request) (data.Filters, *validator.Validator) {
	qs := r.URL.Query()

	filters := data.Filters{
		Page:   app.readInt(qs, "page", 1),
		Limit:  app.readInt(qs, "limit", 10),
		Search: app.readString(qs, "search", ""),
	}

	if dir := app.readString(qs, "orderByTitle", ""); validator.In(dir, "asc", "desc") {
		filters.OrderBy = "title"
		filters.Direction = dir
	} else if dir := app.readString(qs, "orderByPublishDate", ""); validator.In(dir, "asc", "desc") {
		filters.OrderBy = "publication_year"
		filters.Direction = dir
	}

	v := validator.New()
	v.Check(filters.Page > 0, "page", "must be greater than zero")
	v.Check(filters.Limit > 0, "limit", "must be greater than zero")
	v.Check(filters.Limit <= 100, "limit", "must be a maximum of 100")

	return filters, v
}

// listBooksHandler handles GET /books.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	filters, v := app.readBookFilters(r)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	books, meta, err := app.models.Books.GetAll(uuid.Nil, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	response := envelope{
		"success": true,
		"message": "Get all book successfully",
		"data":    books,
		"meta":    meta,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksByGenreHandler handles GET /genre/:id/books.
// Responds 404 if the genre itself is absent or soft-deleted.
func (app *applicationDependencies) listBooksByGenreHandler(w http.ResponseWriter, r *http.Request) {
	genreID, err := app.readUUIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	filters, v := app.readBookFilters(r)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	_, err = app.models.Genres.Get(genreID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Genre not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	books, meta, err := app.models.Books.GetAll(genreID, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	response := envelope{
		"success": true,
		"message": "Get all book by genre successfully",
		"data":    books,
		"meta":    meta,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /books/:id.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Book not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Get book detail successfully",
		"data":    book,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PATCH /books/:id.
// Only description, price, and stock quantity may change. Every field is a
// pointer; nil means "not provided, leave as-is", and at least one field must
// be present.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Description   *string  `json:"description"`
		Price         *float64 `json:"price"`
		StockQuantity *int     `json:"stock_quantity"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.Description == nil && input.Price == nil && input.StockQuantity == nil {
		app.errorResponse(w, r, http.StatusBadRequest,
			"At least one field (description, price, stock_quantity) is required for update")
		return
	}

	v := validator.New()
	if input.Price != nil {
		v.Check(*input.Price >= 0, "price", "must not be negative")
	}
	if input.StockQuantity != nil {
		v.Check(*input.StockQuantity >= 0, "stock_quantity", "must not be negative")
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Book not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Price != nil {
		book.Price = *input.Price
	}
	if input.StockQuantity != nil {
		book.StockQuantity = *input.StockQuantity
	}

	err = app.models.Books.Update(book)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Book not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Book updated successfully",
		"data": envelope{
			"id":         book.ID,
			"title":      book.Title,
			"updated_at": book.UpdatedAt,
		},
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /books/:id (soft delete).
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Books.SoftDelete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Book not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Book removed successfully",
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
