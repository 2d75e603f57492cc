package service

import (
	"context"
	"testing"
	"time"

	"gemstore/internal/domain"
	"gemstore/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCustomerRepository struct {
	customers map[uuid.UUID]*domain.Customer
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[uuid.UUID]*domain.Customer)}
}

func (m *mockCustomerRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, name, email string) (*domain.Customer, error) {
	if customer, exists := m.customers[userID]; exists {
		return customer, nil
	}
	customer := &domain.Customer{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	m.customers[userID] = customer
	return customer, nil
}

func (m *mockCustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error) {
	customer, exists := m.customers[userID]
	if !exists {
		return nil, repository.ErrCustomerNotFound
	}
	return customer, nil
}

type mockOrderRepository struct {
	orders    map[uuid.UUID]*domain.Order
	addresses map[uuid.UUID]*domain.ShippingAddress
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders:    make(map[uuid.UUID]*domain.Order),
		addresses: make(map[uuid.UUID]*domain.ShippingAddress),
	}
}

func (m *mockOrderRepository) GetOrCreateOpen(ctx context.Context, customerID uuid.UUID) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.CustomerID == customerID && !order.IsCompleted {
			return order, nil
		}
	}
	order := &domain.Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		Shipping:   true,
		CreatedAt:  time.Now(),
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) Complete(ctx context.Context, id uuid.UUID) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.IsCompleted = true
	return nil
}

func (m *mockOrderRepository) UpsertShippingAddress(ctx context.Context, address *domain.ShippingAddress) error {
	if existing, ok := m.addresses[address.OrderID]; ok {
		existing.Address = address.Address
		existing.City = address.City
		existing.State = address.State
		existing.Zipcode = address.Zipcode
		return nil
	}
	m.addresses[address.OrderID] = address
	return nil
}

// mockCartRepository keeps product stock and order lines in memory and
// applies the same pairing rules as the SQL implementation.
type mockCartRepository struct {
	stock map[uuid.UUID]int
	lines map[uuid.UUID]map[uuid.UUID]*domain.CartLine
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{
		stock: make(map[uuid.UUID]int),
		lines: make(map[uuid.UUID]map[uuid.UUID]*domain.CartLine),
	}
}

func (m *mockCartRepository) addProduct(product *domain.Product) {
	m.stock[product.ID] = product.Quantity
}

func (m *mockCartRepository) line(orderID, productID uuid.UUID) *domain.CartLine {
	if m.lines[orderID] == nil {
		m.lines[orderID] = make(map[uuid.UUID]*domain.CartLine)
	}
	if m.lines[orderID][productID] == nil {
		m.lines[orderID][productID] = &domain.CartLine{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: productID,
			AddedAt:   time.Now(),
		}
	}
	return m.lines[orderID][productID]
}

func (m *mockCartRepository) AdjustLine(ctx context.Context, orderID, productID uuid.UUID, action domain.CartAction) (domain.AdjustOutcome, error) {
	if action != domain.CartActionAdd && action != domain.CartActionRemove {
		return "", repository.ErrInvalidCartAction
	}

	stock, exists := m.stock[productID]
	if !exists {
		return "", repository.ErrProductNotFound
	}

	line := m.line(orderID, productID)

	if action == domain.CartActionAdd {
		if stock == 0 {
			return domain.AdjustOutOfStock, nil
		}
		line.Quantity++
		m.stock[productID]--
		return domain.AdjustReserved, nil
	}

	if line.Quantity == 0 {
		return domain.AdjustEmptyLine, nil
	}
	line.Quantity--
	m.stock[productID]++
	return domain.AdjustReleased, nil
}

func (m *mockCartRepository) ListLines(ctx context.Context, orderID uuid.UUID) ([]*domain.CartLine, error) {
	lines := []*domain.CartLine{}
	for _, line := range m.lines[orderID] {
		lines = append(lines, line)
	}
	return lines, nil
}

func (m *mockCartRepository) ClearLines(ctx context.Context, orderID uuid.UUID) error {
	delete(m.lines, orderID)
	return nil
}

func (m *mockCartRepository) setLine(orderID uuid.UUID, line *domain.CartLine) {
	if m.lines[orderID] == nil {
		m.lines[orderID] = make(map[uuid.UUID]*domain.CartLine)
	}
	m.lines[orderID][line.ProductID] = line
}

func newTestCartService() (CartService, *mockCustomerRepository, *mockOrderRepository, *mockCartRepository) {
	customerRepo := newMockCustomerRepository()
	orderRepo := newMockOrderRepository()
	cartRepo := newMockCartRepository()
	svc := NewCartService(customerRepo, orderRepo, cartRepo, zap.NewNop())
	return svc, customerRepo, orderRepo, cartRepo
}

func testUser() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Email:     "jeweller@example.com",
		FirstName: "Ruby",
		LastName:  "Stone",
		Role:      "user",
	}
}

func TestGetOrCreateCartConverges(t *testing.T) {
	svc, _, _, _ := newTestCartService()
	ctx := context.Background()
	user := testUser()

	customer1, order1, err := svc.GetOrCreateCart(ctx, user)
	require.NoError(t, err)
	customer2, order2, err := svc.GetOrCreateCart(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, customer1.ID, customer2.ID)
	assert.Equal(t, order1.ID, order2.ID)
	assert.Equal(t, "Ruby Stone", customer1.Name)
}

func TestAdjustLineOutcomes(t *testing.T) {
	svc, _, _, cartRepo := newTestCartService()
	ctx := context.Background()
	user := testUser()

	product := &domain.Product{ID: uuid.New(), Quantity: 1}
	cartRepo.addProduct(product)

	outcome, err := svc.AdjustLine(ctx, user, product.ID, domain.CartActionAdd)
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustReserved, outcome)

	// Stock is now exhausted, so the next add does nothing.
	outcome, err = svc.AdjustLine(ctx, user, product.ID, domain.CartActionAdd)
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustOutOfStock, outcome)

	outcome, err = svc.AdjustLine(ctx, user, product.ID, domain.CartActionRemove)
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustReleased, outcome)

	outcome, err = svc.AdjustLine(ctx, user, product.ID, domain.CartActionRemove)
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustEmptyLine, outcome)
}

func TestAdjustLineUnknownProductFails(t *testing.T) {
	svc, _, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AdjustLine(ctx, testUser(), uuid.New(), domain.CartActionAdd)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestTotalsTwoUnitsAtTenFifty(t *testing.T) {
	svc, _, _, cartRepo := newTestCartService()
	ctx := context.Background()
	user := testUser()

	product := &domain.Product{ID: uuid.New(), Quantity: 10}
	cartRepo.addProduct(product)

	_, order, err := svc.GetOrCreateCart(ctx, user)
	require.NoError(t, err)

	cartRepo.setLine(order.ID, &domain.CartLine{
		ID:           uuid.New(),
		OrderID:      order.ID,
		ProductID:    product.ID,
		Quantity:     2,
		ProductTitle: "Sapphire Pendant",
		ProductPrice: 10.50,
	})

	totals, err := svc.Totals(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 21.00, totals.TotalPrice)
	assert.Equal(t, 2, totals.TotalQuantity)
}

func TestClearedCartTotalsAreZero(t *testing.T) {
	svc, _, _, cartRepo := newTestCartService()
	ctx := context.Background()
	user := testUser()

	product := &domain.Product{ID: uuid.New(), Quantity: 5}
	cartRepo.addProduct(product)

	for i := 0; i < 3; i++ {
		_, err := svc.AdjustLine(ctx, user, product.ID, domain.CartActionAdd)
		require.NoError(t, err)
	}

	_, order, err := svc.GetOrCreateCart(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, order.ID))

	totals, err := svc.Totals(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartTotals{TotalPrice: 0, TotalQuantity: 0}, totals)
}

func TestSummaryReflectsLines(t *testing.T) {
	svc, _, _, cartRepo := newTestCartService()
	ctx := context.Background()
	user := testUser()

	product := &domain.Product{ID: uuid.New(), Quantity: 4}
	cartRepo.addProduct(product)

	for i := 0; i < 2; i++ {
		_, err := svc.AdjustLine(ctx, user, product.ID, domain.CartActionAdd)
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, user)
	require.NoError(t, err)

	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 2, summary.Lines[0].Quantity)
	assert.Equal(t, 2, summary.Totals.TotalQuantity)
	assert.Equal(t, user.ID, summary.Customer.UserID)
	assert.False(t, summary.Order.IsCompleted)
}

func TestProperty_TotalsAreLinearInLines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total price is the sum of price times quantity over all lines", prop.ForAll(
		func(prices []float64, quantities []int) bool {
			svc, _, _, cartRepo := newTestCartService()
			ctx := context.Background()
			user := testUser()

			_, order, err := svc.GetOrCreateCart(ctx, user)
			if err != nil {
				return false
			}

			n := len(prices)
			if len(quantities) < n {
				n = len(quantities)
			}

			expectedPrice := 0.0
			expectedQuantity := 0
			for i := 0; i < n; i++ {
				cartRepo.setLine(order.ID, &domain.CartLine{
					ID:           uuid.New(),
					OrderID:      order.ID,
					ProductID:    uuid.New(),
					Quantity:     quantities[i],
					ProductPrice: prices[i],
				})
				expectedPrice += prices[i] * float64(quantities[i])
				expectedQuantity += quantities[i]
			}

			totals, err := svc.Totals(ctx, order.ID)
			if err != nil {
				return false
			}

			if totals.TotalQuantity != expectedQuantity {
				t.Logf("FAIL: quantity mismatch. Expected %d, got %d", expectedQuantity, totals.TotalQuantity)
				return false
			}

			diff := totals.TotalPrice - expectedPrice
			if diff < -1e-9 || diff > 1e-9 {
				t.Logf("FAIL: price mismatch. Expected %f, got %f", expectedPrice, totals.TotalPrice)
				return false
			}

			return true
		},
		gen.SliceOf(gen.Float64Range(0.01, 999.99)),
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_AddThenRemoveRestoresStock(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every add/remove pair leaves stock and line unchanged", prop.ForAll(
		func(stock int, rounds int) bool {
			svc, _, _, cartRepo := newTestCartService()
			ctx := context.Background()
			user := testUser()

			product := &domain.Product{ID: uuid.New(), Quantity: stock}
			cartRepo.addProduct(product)

			for i := 0; i < rounds; i++ {
				if _, err := svc.AdjustLine(ctx, user, product.ID, domain.CartActionAdd); err != nil {
					return false
				}
				if _, err := svc.AdjustLine(ctx, user, product.ID, domain.CartActionRemove); err != nil {
					return false
				}
			}

			if cartRepo.stock[product.ID] != stock {
				t.Logf("FAIL: stock drifted. Expected %d, got %d", stock, cartRepo.stock[product.ID])
				return false
			}

			_, order, err := svc.GetOrCreateCart(ctx, user)
			if err != nil {
				return false
			}
			totals, err := svc.Totals(ctx, order.ID)
			if err != nil {
				return false
			}
			if totals.TotalQuantity != 0 {
				t.Logf("FAIL: line quantity drifted. Expected 0, got %d", totals.TotalQuantity)
				return false
			}

			return true
		},
		gen.IntRange(0, 50),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
