package checkout

import (
	"context"

	"github.com/woominecraft/wmcbridge/internal/types/order"
)

type TemplateSource interface {
	GetCommandTemplate(ctx context.Context, productID int64) ([]string, error)
}

// Service decides whether a cart needs a player id at all.
type Service struct {
	products TemplateSource
}

func NewService(products TemplateSource) *Service {
	return &Service{products: products}
}

// CartRequiresPlayerID is true iff at least one item's effective product
// carries a non-empty command template. Carts without such items render
// no player field and skip profile validation entirely.
func (s *Service) CartRequiresPlayerID(ctx context.Context, items []order.Item) (bool, error) {
	for _, it := range items {
		template, err := s.products.GetCommandTemplate(ctx, it.EffectiveProduct())
		if err != nil {
			return false, err
		}
		if len(template) > 0 {
			return true, nil
		}
	}
	return false, nil
}
