package command

import (
	"context"
	"strings"

	"github.com/woominecraft/wmcbridge/internal/types/order"
)

// Placeholder is substituted with the order's player id inside a
// template entry.
const Placeholder = "%s"

type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	SetOrderCommands(ctx context.Context, orderID int64, commands []string) error
}

type TemplateSource interface {
	GetCommandTemplate(ctx context.Context, productID int64) ([]string, error)
}

// Compiler turns an order's line items into the flat command list the
// game server will run for the buyer.
type Compiler struct {
	orders   OrderStore
	products TemplateSource
}

func NewCompiler(orders OrderStore, products TemplateSource) *Compiler {
	return &Compiler{orders: orders, products: products}
}

// Expand repeats the template once per purchased unit, substituting every
// placeholder occurrence with playerID. Entries without a placeholder are
// copied verbatim.
func Expand(template []string, playerID string, quantity int) []string {
	if len(template) == 0 || quantity <= 0 {
		return nil
	}
	out := make([]string, 0, len(template)*quantity)
	for n := 0; n < quantity; n++ {
		for _, cmd := range template {
			if strings.Contains(cmd, Placeholder) {
				cmd = strings.ReplaceAll(cmd, Placeholder, playerID)
			}
			out = append(out, cmd)
		}
	}
	return out
}

// Compile resolves each line item's effective template, expands it and
// persists the accumulated list on the order. Commands are written at
// most once: an order that already has them is left untouched, and an
// empty accumulation writes nothing. The player id captured at checkout
// is trusted as-is.
func (c *Compiler) Compile(ctx context.Context, orderID int64) error {
	o, err := c.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if len(o.Commands) > 0 {
		return nil
	}

	var compiled []string
	for _, it := range o.Items {
		template, err := c.products.GetCommandTemplate(ctx, it.EffectiveProduct())
		if err != nil {
			return err
		}
		compiled = append(compiled, Expand(template, o.PlayerID, it.Quantity)...)
	}

	if len(compiled) == 0 {
		return nil
	}
	return c.orders.SetOrderCommands(ctx, orderID, compiled)
}
