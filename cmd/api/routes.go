// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the application middleware.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → authenticate → router
//
// authenticate resolves a bearer token to a user id for every request; the
// handlers wrapped in requireAuthenticatedUser reject requests without one.
//
// Note: the genre-scoped book listing lives at /genre/:id/books because
// httprouter cannot register /books/genre/:id alongside /books/:id, and
// /transactions/statistics is dispatched inside showTransactionHandler for
// the same reason.
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/health-check", app.healthCheckHandler)

	// Auth routes
	router.HandlerFunc(http.MethodPost, "/auth/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/auth/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodGet, "/auth/me", app.requireAuthenticatedUser(app.showCurrentUserHandler))

	// Genre routes: listing and detail are public, mutations require auth.
	router.HandlerFunc(http.MethodPost, "/genre", app.requireAuthenticatedUser(app.createGenreHandler))
	router.HandlerFunc(http.MethodGet, "/genre", app.listGenresHandler)
	router.HandlerFunc(http.MethodGet, "/genre/:id", app.showGenreHandler)
	router.HandlerFunc(http.MethodGet, "/genre/:id/books", app.requireAuthenticatedUser(app.listBooksByGenreHandler))
	router.HandlerFunc(http.MethodPatch, "/genre/:id", app.requireAuthenticatedUser(app.updateGenreHandler))
	router.HandlerFunc(http.MethodDelete, "/genre/:id", app.requireAuthenticatedUser(app.deleteGenreHandler))

	// Book routes: all require auth.
	router.HandlerFunc(http.MethodPost, "/books", app.requireAuthenticatedUser(app.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/books", app.requireAuthenticatedUser(app.listBooksHandler))
	router.HandlerFunc(http.MethodGet, "/books/:id", app.requireAuthenticatedUser(app.showBookHandler))
	router.HandlerFunc(http.MethodPatch, "/books/:id", app.requireAuthenticatedUser(app.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/books/:id", app.requireAuthenticatedUser(app.deleteBookHandler))

	// Transaction routes: all require auth. GET /transactions/:id also serves
	// /transactions/statistics (see showTransactionHandler).
	router.HandlerFunc(http.MethodPost, "/transactions", app.requireAuthenticatedUser(app.createTransactionHandler))
	router.HandlerFunc(http.MethodGet, "/transactions", app.requireAuthenticatedUser(app.listTransactionsHandler))
	router.HandlerFunc(http.MethodGet, "/transactions/:id", app.requireAuthenticatedUser(app.showTransactionHandler))

	// recoverPanic is outermost so it catches panics from the other
	// middleware and the router alike.
	return app.recoverPanic(app.rateLimit(app.authenticate(router)))
}
