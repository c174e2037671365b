package data

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderDecrementsStock(t *testing.T) {
	models := newTestModels(t)
	user := createTestUser(t, models, "buyer@example.com")
	genre := createTestGenre(t, models, "Fiction")
	book := createTestBook(t, models, genre, "Neuromancer", 5)

	order, err := models.Orders.Create(user.ID, []OrderLine{{BookID: book.ID, Quantity: 3}})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, user.ID, order.UserID)
	assert.False(t, order.CreatedAt.IsZero())
	require.Len(t, order.Items, 1)
	assert.Equal(t, book.ID, order.Items[0].BookID)
	assert.Equal(t, 3, order.Items[0].Quantity)

	after, err := models.Books.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.StockQuantity)

	// A second attempt asking for more than remains fails and leaves the
	// stock exactly as it was.
	_, err = models.Orders.Create(user.ID, []OrderLine{{BookID: book.ID, Quantity: 10}})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Neuromancer", stockErr.Title)

	after, err = models.Books.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.StockQuantity)
}

func TestFailedPlacementRollsBackEverything(t *testing.T) {
	models := newTestModels(t)
	user := createTestUser(t, models, "buyer@example.com")
	genre := createTestGenre(t, models, "Fiction")
	first := createTestBook(t, models, genre, "Dune", 5)
	unknown := uuid.New()

	// The first line would succeed on its own; the second names a book that
	// does not exist. Nothing from the call may persist.
	_, err := models.Orders.Create(user.ID, []OrderLine{
		{BookID: first.ID, Quantity: 2},
		{BookID: unknown, Quantity: 1},
	})
	var notFoundErr *BookNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, unknown, notFoundErr.ID)

	after, err := models.Books.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.StockQuantity, "stock decrement must be rolled back")

	stats, err := models.Orders.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalTransactions, "order row must be rolled back")

	orders, _, err := models.Orders.GetAll(Filters{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestInsufficientStockAbortsMultiItemOrder(t *testing.T) {
	models := newTestModels(t)
	user := createTestUser(t, models, "buyer@example.com")
	genre := createTestGenre(t, models, "Fiction")
	plenty := createTestBook(t, models, genre, "Dune", 10)
	scarce := createTestBook(t, models, genre, "Hyperion", 1)

	_, err := models.Orders.Create(user.ID, []OrderLine{
		{BookID: plenty.ID, Quantity: 4},
		{BookID: scarce.ID, Quantity: 2},
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Hyperion", stockErr.Title)

	for _, book := range []*Book{plenty, scarce} {
		after, err := models.Books.Get(book.ID)
		require.NoError(t, err)
		assert.Equal(t, book.StockQuantity, after.StockQuantity)
	}
}

func TestSoftDeletedBookIsNotOrderable(t *testing.T) {
	models := newTestModels(t)
	user := createTestUser(t, models, "buyer@example.com")
	genre := createTestGenre(t, models, "Fiction")
	book := createTestBook(t, models, genre, "Dune", 5)

	require.NoError(t, models.Books.SoftDelete(book.ID))

	_, err := models.Orders.Create(user.ID, []OrderLine{{BookID: book.ID, Quantity: 1}})
	var notFoundErr *BookNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, book.ID, notFoundErr.ID)
}

func TestConcurrentPlacementNeverOversells(t *testing.T) {
	models := newTestModels(t)
	user := createTestUser(t, models, "buyer@example.com")
	genre := createTestGenre(t, models, "Fiction")
	book := createTestBook(t, models, genre, "Dune", 5)

	// Two concurrent orders of 3 against a stock of 5: the row lock forces
	// them to serialize, so exactly one succeeds.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = models.Orders.Create(user.ID, []OrderLine{{BookID: book.ID, Quantity: 3}})
		}(i)
	}
	wg.Wait()

	var stockErr *InsufficientStockError
	switch {
	case errs[0] == nil && errs[1] != nil:
		require.ErrorAs(t, errs[1], &stockErr)
	case errs[1] == nil && errs[0] != nil:
		require.ErrorAs(t, errs[0], &stockErr)
	default:
		t.Fatalf("expected exactly one success, got errors %v and %v", errs[0], errs[1])
	}

	after, err := models.Books.Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.StockQuantity)
}

func TestOrderReadsEmbedUserAndItems(t *testing.T) {
	models := newTestModels(t)
	user := createTestUser(t, models, "buyer@example.com")
	genre := createTestGenre(t, models, "Fiction")
	dune := createTestBook(t, models, genre, "Dune", 5)
	hyperion := createTestBook(t, models, genre, "Hyperion", 5)

	first, err := models.Orders.Create(user.ID, []OrderLine{
		{BookID: dune.ID, Quantity: 1},
		{BookID: hyperion.ID, Quantity: 2},
	})
	require.NoError(t, err)

	// Keep the creation timestamps distinct so the newest-first assertion
	// below cannot tie.
	time.Sleep(10 * time.Millisecond)

	second, err := models.Orders.Create(user.ID, []OrderLine{{BookID: dune.ID, Quantity: 1}})
	require.NoError(t, err)

	fetched, err := models.Orders.Get(first.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.User)
	assert.Equal(t, "buyer@example.com", fetched.User.Email)
	require.Len(t, fetched.Items, 2)
	require.NotNil(t, fetched.Items[0].Book)
	titles := []string{fetched.Items[0].Book.Title, fetched.Items[1].Book.Title}
	assert.ElementsMatch(t, []string{"Dune", "Hyperion"}, titles)

	// A book removed from the catalog still shows up in order history.
	require.NoError(t, models.Books.SoftDelete(hyperion.ID))
	fetched, err = models.Orders.Get(first.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Items, 2)

	orders, meta, err := models.Orders.GetAll(Filters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 2, meta.Total)
	// Newest first.
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	_, err = models.Orders.Get(uuid.New())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStatisticsEmptyStore(t *testing.T) {
	models := newTestModels(t)

	stats, err := models.Orders.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalTransactions)
	assert.Nil(t, stats.MostGenre)
	assert.Nil(t, stats.LeastGenre)
}

func TestStatisticsCountsDistinctOrdersPerGenre(t *testing.T) {
	models := newTestModels(t)
	user := createTestUser(t, models, "buyer@example.com")
	fantasy := createTestGenre(t, models, "Fantasy")
	horror := createTestGenre(t, models, "Horror")
	fBook1 := createTestBook(t, models, fantasy, "The Hobbit", 10)
	fBook2 := createTestBook(t, models, fantasy, "Earthsea", 10)
	hBook := createTestBook(t, models, horror, "It", 10)

	// One order with two fantasy books counts as one fantasy transaction.
	_, err := models.Orders.Create(user.ID, []OrderLine{
		{BookID: fBook1.ID, Quantity: 1},
		{BookID: fBook2.ID, Quantity: 1},
	})
	require.NoError(t, err)

	_, err = models.Orders.Create(user.ID, []OrderLine{{BookID: fBook1.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = models.Orders.Create(user.ID, []OrderLine{{BookID: hBook.ID, Quantity: 1}})
	require.NoError(t, err)

	stats, err := models.Orders.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTransactions)
	require.NotNil(t, stats.MostGenre)
	require.NotNil(t, stats.LeastGenre)
	assert.Equal(t, "Fantasy", stats.MostGenre.GenreName)
	assert.Equal(t, 2, stats.MostGenre.TxnCount)
	assert.Equal(t, "Horror", stats.LeastGenre.GenreName)
	assert.Equal(t, 1, stats.LeastGenre.TxnCount)
}

func TestStatisticsTieBreaksByGenreName(t *testing.T) {
	models := newTestModels(t)
	user := createTestUser(t, models, "buyer@example.com")
	zephyr := createTestGenre(t, models, "Zephyr")
	alpha := createTestGenre(t, models, "Alpha")
	zBook := createTestBook(t, models, zephyr, "Z Book", 10)
	aBook := createTestBook(t, models, alpha, "A Book", 10)

	_, err := models.Orders.Create(user.ID, []OrderLine{{BookID: zBook.ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = models.Orders.Create(user.ID, []OrderLine{{BookID: aBook.ID, Quantity: 1}})
	require.NoError(t, err)

	// Both genres have one distinct order; the name ascending tie-break makes
	// the lexicographically first genre "most" and the last one "least".
	stats, err := models.Orders.Statistics()
	require.NoError(t, err)
	require.NotNil(t, stats.MostGenre)
	require.NotNil(t, stats.LeastGenre)
	assert.Equal(t, "Alpha", stats.MostGenre.GenreName)
	assert.Equal(t, "Zephyr", stats.LeastGenre.GenreName)
	assert.Equal(t, stats.MostGenre.TxnCount, stats.LeastGenre.TxnCount)
}
