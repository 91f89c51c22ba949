package order

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/woominecraft/wmcbridge/internal/types/order"
)

type mockRepo struct {
	createOrderFn    func(ctx context.Context, o *order.Order) error
	getOrderFn       func(ctx context.Context, id int64) (*order.Order, error)
	resetDeliveredFn func(ctx context.Context, playerID string, orderID int64) error
}

func (m *mockRepo) CreateOrder(ctx context.Context, o *order.Order) error {
	return m.createOrderFn(ctx, o)
}
func (m *mockRepo) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return m.getOrderFn(ctx, id)
}
func (m *mockRepo) ResetDelivered(ctx context.Context, playerID string, orderID int64) error {
	return m.resetDeliveredFn(ctx, playerID, orderID)
}

type mockCompiler struct {
	compiled []int64
}

func (m *mockCompiler) Compile(ctx context.Context, orderID int64) error {
	m.compiled = append(m.compiled, orderID)
	return nil
}

type mockFeed struct {
	invalidations int
}

func (m *mockFeed) InvalidateCache() { m.invalidations++ }

func TestIngestCompilesOnce(t *testing.T) {
	repo := &mockRepo{
		createOrderFn: func(ctx context.Context, o *order.Order) error {
			o.ID = 42
			return nil
		},
	}
	compiler := &mockCompiler{}
	svc := NewService(repo, compiler, &mockFeed{})

	o := &order.Order{
		Status:   order.StatusCompleted,
		PlayerID: "Notch",
		Items:    []order.Item{{ProductID: 1, Quantity: 1}},
	}
	err := svc.Ingest(context.Background(), o)
	assert.NoError(t, err)
	assert.Equal(t, []int64{42}, compiler.compiled)
}

func TestIngestRejectsEmptyOrder(t *testing.T) {
	svc := NewService(&mockRepo{}, &mockCompiler{}, &mockFeed{})
	err := svc.Ingest(context.Background(), &order.Order{PlayerID: "Notch"})
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestIngestDefaultsStatus(t *testing.T) {
	var saved *order.Order
	repo := &mockRepo{
		createOrderFn: func(ctx context.Context, o *order.Order) error {
			saved = o
			return nil
		},
	}
	svc := NewService(repo, &mockCompiler{}, &mockFeed{})

	err := svc.Ingest(context.Background(), &order.Order{
		Items: []order.Item{{ProductID: 1, Quantity: 1}},
	})
	assert.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, saved.Status)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestConfirmation(t *testing.T) {
	repo := &mockRepo{
		getOrderFn: func(ctx context.Context, id int64) (*order.Order, error) {
			return &order.Order{ID: id, PlayerID: "Notch"}, nil
		},
	}
	svc := NewService(repo, &mockCompiler{}, &mockFeed{})

	playerID, err := svc.Confirmation(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "Notch", playerID)
}

func TestConfirmationNotFound(t *testing.T) {
	repo := &mockRepo{
		getOrderFn: func(ctx context.Context, id int64) (*order.Order, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := NewService(repo, &mockCompiler{}, &mockFeed{})

	_, err := svc.Confirmation(context.Background(), 99)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestResetDeliveredBustsFeedCache(t *testing.T) {
	var gotPlayer string
	var gotOrder int64
	repo := &mockRepo{
		resetDeliveredFn: func(ctx context.Context, playerID string, orderID int64) error {
			gotPlayer = playerID
			gotOrder = orderID
			return nil
		},
	}
	feed := &mockFeed{}
	svc := NewService(repo, &mockCompiler{}, feed)

	err := svc.ResetDelivered(context.Background(), "Notch", 5)
	assert.NoError(t, err)
	assert.Equal(t, "Notch", gotPlayer)
	assert.Equal(t, int64(5), gotOrder)
	assert.Equal(t, 1, feed.invalidations)
}

func TestResetDeliveredRequiresPlayer(t *testing.T) {
	feed := &mockFeed{}
	svc := NewService(&mockRepo{}, &mockCompiler{}, feed)

	err := svc.ResetDelivered(context.Background(), "", 5)
	assert.ErrorIs(t, err, ErrMissingPlayer)
	assert.Zero(t, feed.invalidations)
}
