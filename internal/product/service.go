package product

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/woominecraft/wmcbridge/internal/types/product"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	SaveProduct(ctx context.Context, p *product.Product) error
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
}

// FeedCache is the slice of the feed service a product save needs to
// reach: command template edits must propagate to the next poll.
type FeedCache interface {
	InvalidateCache()
}

type Service struct {
	repo Repository
	feed FeedCache
}

func NewService(repo Repository, feed FeedCache) *Service {
	return &Service{repo: repo, feed: feed}
}

// Save persists the product and busts the feed cache. The bust is
// deliberately coarse: every product save invalidates, template or not.
// Saves arriving from a background job context skip the bust and accept
// the staleness window.
func (s *Service) Save(ctx context.Context, p *product.Product, background bool) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return err
	}
	if !background {
		s.feed.InvalidateCache()
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *Service) List(ctx context.Context) ([]product.Product, error) {
	return s.repo.ListProducts(ctx)
}
