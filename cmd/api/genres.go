// cmd/api/genres.go
// Handlers for the genre catalog. Genres are soft-deleted: removal hides them
// from every read path but never drops the row, because books keep referencing
// their genre.
package main

import (
	"errors"
	"net/http"

	"github.com/mirahayu/bookstore-api/internal/data"
	"github.com/mirahayu/bookstore-api/internal/validator"
)

// createGenreHandler handles POST /genre.
func (app *applicationDependencies) createGenreHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Name != "", "name", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	genre := &data.Genre{Name: input.Name}

	err = app.models.Genres.Insert(genre)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateGenreName):
			app.errorResponse(w, r, http.StatusBadRequest, "Genre name already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Genre created successfully",
		"data":    genre,
	}
	err = app.writeJSON(w, http.StatusCreated, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listGenresHandler handles GET /genre.
// Supports page/limit pagination, a case-insensitive name search, and
// orderByName=asc|desc sorting. Invalid order values are ignored.
func (app *applicationDependencies) listGenresHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filters := data.Filters{
		Page:   app.readInt(qs, "page", 1),
		Limit:  app.readInt(qs, "limit", 10),
		Search: app.readString(qs, "search", ""),
	}
	if dir := app.readString(qs, "orderByName", ""); validator.In(dir, "asc", "desc") {
		filters.OrderBy = "name"
		filters.Direction = dir
	}

	v := validator.New()
	v.Check(filters.Page > 0, "page", "must be greater than zero")
	v.Check(filters.Limit > 0, "limit", "must be greater than zero")
	v.Check(filters.Limit <= 100, "limit", "must be a maximum of 100")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	genres, meta, err := app.models.Genres.GetAll(filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	response := envelope{
		"success": true,
		"message": "Get all genre successfully",
		"data":    genres,
		"meta":    meta,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showGenreHandler handles GET /genre/:id.
func (app *applicationDependencies) showGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	genre, err := app.models.Genres.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Genre not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Get genre detail successfully",
		"data":    genre,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateGenreHandler handles PATCH /genre/:id.
// Name is the only mutable field and must be provided.
func (app *applicationDependencies) updateGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Name != "", "name", "must be provided")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	genre, err := app.models.Genres.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Genre not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	genre.Name = input.Name

	err = app.models.Genres.Update(genre)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateGenreName):
			app.errorResponse(w, r, http.StatusBadRequest, "Genre name already exists")
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Genre not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Genre updated successfully",
		"data":    genre,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteGenreHandler handles DELETE /genre/:id (soft delete).
func (app *applicationDependencies) deleteGenreHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.models.Genres.SoftDelete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Genre not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Genre removed successfully",
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
