package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/woominecraft/wmcbridge/internal/types/order"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrMissingPlayer = errors.New("player id is required")
	ErrNoItems       = errors.New("order has no items")
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	ResetDelivered(ctx context.Context, playerID string, orderID int64) error
}

type Compiler interface {
	Compile(ctx context.Context, orderID int64) error
}

type FeedCache interface {
	InvalidateCache()
}

type Service struct {
	repo     OrderRepository
	compiler Compiler
	feed     FeedCache
}

func NewService(repo OrderRepository, compiler Compiler, feed FeedCache) *Service {
	return &Service{repo: repo, compiler: compiler, feed: feed}
}

// Ingest persists an order coming off the shop's checkout and compiles
// its command list right away, from the line items present at this
// moment. Later template edits never touch an already-compiled order.
func (s *Service) Ingest(ctx context.Context, o *order.Order) error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	if o.Status == "" {
		o.Status = order.StatusProcessing
	}
	o.CreatedAt = time.Now().UTC()
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return err
	}
	return s.compiler.Compile(ctx, o.ID)
}

// Confirmation returns the player id for the thank-you page; empty when
// the order was not a command order.
func (s *Service) Confirmation(ctx context.Context, orderID int64) (string, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return o.PlayerID, nil
}

// ResetDelivered puts a player's orders back on the feed, optionally a
// single one, and busts the feed cache so the next poll picks them up.
func (s *Service) ResetDelivered(ctx context.Context, playerID string, orderID int64) error {
	if playerID == "" {
		return ErrMissingPlayer
	}
	if err := s.repo.ResetDelivered(ctx, playerID, orderID); err != nil {
		return err
	}
	s.feed.InvalidateCache()
	return nil
}
