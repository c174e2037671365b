// cmd/api/orders.go
// Handlers for order placement (the transactional core), order reads, and the
// genre statistics endpoint. The API calls orders "transactions".
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mirahayu/bookstore-api/internal/data"
	"github.com/mirahayu/bookstore-api/internal/validator"

	"github.com/google/uuid"
)

// createTransactionHandler handles POST /transactions.
// It validates the shape of every requested line up front, then hands the
// whole list to the order model, which commits the order, the line items, and
// the stock decrements atomically or not at all. Failures name the offending
// book: 404 carries the unknown book id, 400 the title that is out of stock.
func (app *applicationDependencies) createTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Items []struct {
			BookID   uuid.UUID `json:"book_id"`
			Quantity *int      `json:"quantity"`
		} `json:"items"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if len(input.Items) == 0 {
		app.errorResponse(w, r, http.StatusBadRequest, "Items are required")
		return
	}

	v := validator.New()
	for i, item := range input.Items {
		v.Check(item.BookID != uuid.Nil, fmt.Sprintf("items[%d].book_id", i), "must be provided")
		v.Check(item.Quantity != nil && *item.Quantity > 0, fmt.Sprintf("items[%d].quantity", i), "must be a positive integer")
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	lines := make([]data.OrderLine, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, data.OrderLine{
			BookID:   item.BookID,
			Quantity: *item.Quantity,
		})
	}

	order, err := app.models.Orders.Create(app.contextGetUserID(r), lines)
	if err != nil {
		var notFoundErr *data.BookNotFoundError
		var stockErr *data.InsufficientStockError
		switch {
		case errors.As(err, &notFoundErr):
			app.errorResponse(w, r, http.StatusNotFound, notFoundErr.Error())
		case errors.As(err, &stockErr):
			app.errorResponse(w, r, http.StatusBadRequest, stockErr.Error())
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Transaction (Order) created successfully",
		"data": envelope{
			"id":         order.ID,
			"user_id":    order.UserID,
			"created_at": order.CreatedAt,
		},
	}
	err = app.writeJSON(w, http.StatusCreated, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listTransactionsHandler handles GET /transactions.
// Orders are returned newest first, each with its user and line items.
func (app *applicationDependencies) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filters := data.Filters{
		Page:  app.readInt(qs, "page", 1),
		Limit: app.readInt(qs, "limit", 10),
	}

	v := validator.New()
	v.Check(filters.Page > 0, "page", "must be greater than zero")
	v.Check(filters.Limit > 0, "limit", "must be greater than zero")
	v.Check(filters.Limit <= 100, "limit", "must be a maximum of 100")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	orders, meta, err := app.models.Orders.GetAll(filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	response := envelope{
		"success": true,
		"message": "Get all transactions successfully",
		"data":    orders,
		"meta":    meta,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showTransactionHandler handles GET /transactions/:id.
// The statistics endpoint shares this route's wildcard (httprouter cannot
// register a static sibling next to :id), so "statistics" is dispatched here.
func (app *applicationDependencies) showTransactionHandler(w http.ResponseWriter, r *http.Request) {
	raw := app.readRawParam(r, "id")
	if raw == "statistics" {
		app.transactionStatisticsHandler(w, r)
		return
	}

	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		app.badRequestResponse(w, r, errors.New("invalid id parameter"))
		return
	}

	order, err := app.models.Orders.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, "Transaction not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	response := envelope{
		"success": true,
		"message": "Get transaction detail successfully",
		"data":    order,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// transactionStatisticsHandler serves GET /transactions/statistics.
// A point-in-time read: the total order count plus the most- and
// least-ordered genres by distinct order count.
func (app *applicationDependencies) transactionStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.models.Orders.Statistics()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	response := envelope{
		"success": true,
		"message": "Get transaction statistics successfully",
		"data":    stats,
	}
	err = app.writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
