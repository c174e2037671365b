// internal/data/orders.go
// Orders and order items, including the transactional order-placement path.
// An order and its line items are immutable once created; there are no update
// or delete operations here.
package data

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Order represents a row in the orders table. User and Items are populated on
// read paths; both are omitted from JSON when not loaded.
type Order struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
	User      *OrderUser   `json:"user,omitempty"`
	Items     []*OrderItem `json:"order_items,omitempty"`
}

// OrderUser is the slice of the user record exposed on order reads.
type OrderUser struct {
	ID       uuid.UUID `json:"id"`
	Username *string   `json:"username"`
	Email    string    `json:"email"`
}

// OrderItem represents one (book, quantity) line within an order.
type OrderItem struct {
	ID       uuid.UUID      `json:"id"`
	OrderID  uuid.UUID      `json:"order_id"`
	BookID   uuid.UUID      `json:"book_id"`
	Quantity int            `json:"quantity"`
	Book     *OrderItemBook `json:"book,omitempty"`
}

// OrderItemBook is the slice of the book record exposed on order reads. It is
// read without the soft-delete filter: a book removed from the catalog still
// appears in the history of orders that bought it.
type OrderItemBook struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Price float64   `json:"price"`
}

// OrderLine is one requested (book, quantity) pair for order placement.
// The caller validates that BookID is set and Quantity is positive before
// placement begins.
type OrderLine struct {
	BookID   uuid.UUID
	Quantity int
}

// GenreCount is one row of the per-genre order statistics.
type GenreCount struct {
	GenreID   uuid.UUID `json:"genre_id"`
	GenreName string    `json:"genre_name"`
	TxnCount  int       `json:"txn_count"`
}

// Statistics is the aggregate view over all orders. MostGenre and LeastGenre
// are nil when no order items exist.
type Statistics struct {
	TotalTransactions int         `json:"totalTransactions"`
	MostGenre         *GenreCount `json:"mostGenre"`
	LeastGenre        *GenreCount `json:"leastGenre"`
}

// OrderModel wraps a *sql.DB connection and provides methods for order records.
type OrderModel struct {
	DB *sql.DB
}

// Create places an order for userID: it creates the order row, then processes
// every line in the submitted sequence, locking the book row, checking stock,
// decrementing it, and recording the line item. The whole sequence runs inside
// one transaction; any failure rolls back the order, every prior decrement,
// and every prior line item, so no partial placement is ever observable.
//
// Failure modes surfaced to the caller: *BookNotFoundError when a line names
// an unknown or soft-deleted book, *InsufficientStockError when its stock is
// below the requested quantity.
func (m OrderModel) Create(userID uuid.UUID, lines []OrderLine) (*Order, error) {
	tx, err := m.DB.Begin()
	if err != nil {
		return nil, err
	}
	// No-op once Commit has succeeded.
	defer tx.Rollback()

	order := Order{UserID: userID}

	err = tx.QueryRow(
		`INSERT INTO orders (user_id) VALUES ($1) RETURNING id, created_at`,
		userID,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		book, err := getBookForUpdate(tx, line.BookID)
		if err != nil {
			return nil, err
		}

		if book.StockQuantity < line.Quantity {
			return nil, &InsufficientStockError{Title: book.Title}
		}

		err = decrementBookStock(tx, line.BookID, line.Quantity)
		if err != nil {
			return nil, err
		}

		item := OrderItem{
			OrderID:  order.ID,
			BookID:   line.BookID,
			Quantity: line.Quantity,
		}
		err = tx.QueryRow(
			`INSERT INTO order_items (order_id, book_id, quantity) VALUES ($1, $2, $3) RETURNING id`,
			item.OrderID, item.BookID, item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, &item)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetAll retrieves a page of orders, newest first, each with its user and
// line items attached. A point-in-time read; no transaction is needed.
func (m OrderModel) GetAll(filters Filters) ([]*Order, Metadata, error) {
	query := `
		SELECT count(*) OVER(), o.id, o.user_id, o.created_at, u.id, u.username, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id ASC
		LIMIT $1 OFFSET $2`

	rows, err := m.DB.Query(query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	total := 0
	orders := []*Order{}

	for rows.Next() {
		var order Order
		var user OrderUser
		err := rows.Scan(
			&total,
			&order.ID,
			&order.UserID,
			&order.CreatedAt,
			&user.ID,
			&user.Username,
			&user.Email,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		order.User = &user
		order.Items = []*OrderItem{}
		orders = append(orders, &order)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	if err = m.attachItems(orders); err != nil {
		return nil, Metadata{}, err
	}

	return orders, calculateMetadata(total, filters.Page, filters.Limit), nil
}

// Get retrieves a single order with its user and line items.
// Returns ErrRecordNotFound if no order with the given id exists.
func (m OrderModel) Get(id uuid.UUID) (*Order, error) {
	query := `
		SELECT o.id, o.user_id, o.created_at, u.id, u.username, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`

	var order Order
	var user OrderUser
	err := m.DB.QueryRow(query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.CreatedAt,
		&user.ID,
		&user.Username,
		&user.Email,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	order.User = &user
	order.Items = []*OrderItem{}

	if err = m.attachItems([]*Order{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

// attachItems loads the line items (with their book summaries) for the given
// orders in one query and distributes them onto the matching Order structs.
func (m OrderModel) attachItems(orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		byID[order.ID] = order
		ids = append(ids, order.ID.String())
	}

	query := `
		SELECT oi.id, oi.order_id, oi.book_id, oi.quantity, b.id, b.title, b.price
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.id`

	rows, err := m.DB.Query(query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		var book OrderItemBook
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.BookID,
			&item.Quantity,
			&book.ID,
			&book.Title,
			&book.Price,
		)
		if err != nil {
			return err
		}
		item.Book = &book
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, &item)
		}
	}
	return rows.Err()
}

// Statistics aggregates the total order count and the per-genre distinct-order
// counts. Genres are ranked by count descending with name ascending as the
// tie-break, so the result is deterministic when counts are equal; the first
// row is the most-ordered genre, the last the least-ordered.
func (m OrderModel) Statistics() (*Statistics, error) {
	var stats Statistics

	err := m.DB.QueryRow(`SELECT count(*) FROM orders`).Scan(&stats.TotalTransactions)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT g.id AS genre_id, g.name AS genre_name, count(DISTINCT oi.order_id) AS txn_count
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		JOIN genres g ON g.id = b.genre_id
		GROUP BY g.id, g.name
		ORDER BY txn_count DESC, g.name ASC`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []GenreCount{}
	for rows.Next() {
		var gc GenreCount
		if err := rows.Scan(&gc.GenreID, &gc.GenreName, &gc.TxnCount); err != nil {
			return nil, err
		}
		counts = append(counts, gc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(counts) > 0 {
		stats.MostGenre = &counts[0]
		stats.LeastGenre = &counts[len(counts)-1]
	}
	return &stats, nil
}
