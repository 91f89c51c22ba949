package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/woominecraft/wmcbridge/internal/types/order"
)

type mockOrders struct {
	getOrderFn    func(ctx context.Context, id int64) (*order.Order, error)
	setCommandsFn func(ctx context.Context, orderID int64, commands []string) error
}

func (m *mockOrders) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return m.getOrderFn(ctx, id)
}
func (m *mockOrders) SetOrderCommands(ctx context.Context, orderID int64, commands []string) error {
	return m.setCommandsFn(ctx, orderID, commands)
}

type mockTemplates struct {
	templates map[int64][]string
}

func (m *mockTemplates) GetCommandTemplate(ctx context.Context, productID int64) ([]string, error) {
	return m.templates[productID], nil
}

func TestExpandRepeatsPerUnit(t *testing.T) {
	got := Expand([]string{"give %s diamond", "say enjoy"}, "Notch", 3)
	assert.Equal(t, []string{
		"give Notch diamond", "say enjoy",
		"give Notch diamond", "say enjoy",
		"give Notch diamond", "say enjoy",
	}, got)
}

func TestExpandReplacesEveryPlaceholder(t *testing.T) {
	got := Expand([]string{"tell %s welcome %s"}, "Notch", 1)
	assert.Equal(t, []string{"tell Notch welcome Notch"}, got)
}

func TestExpandVerbatimWithoutPlaceholder(t *testing.T) {
	got := Expand([]string{"save-all"}, "Notch", 2)
	assert.Equal(t, []string{"save-all", "save-all"}, got)
}

func TestExpandEmptyTemplate(t *testing.T) {
	assert.Nil(t, Expand(nil, "Notch", 5))
}

func TestCompileAccumulatesItemsInOrder(t *testing.T) {
	var written []string
	orders := &mockOrders{
		getOrderFn: func(ctx context.Context, id int64) (*order.Order, error) {
			return &order.Order{
				ID:       id,
				PlayerID: "Notch",
				Items: []order.Item{
					{ProductID: 10, Quantity: 2},
					{ProductID: 11, Quantity: 1},
				},
			}, nil
		},
		setCommandsFn: func(ctx context.Context, orderID int64, commands []string) error {
			written = commands
			return nil
		},
	}
	products := &mockTemplates{templates: map[int64][]string{
		10: {"give %s sword"},
		11: {"op %s"},
	}}

	c := NewCompiler(orders, products)
	err := c.Compile(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"give Notch sword", "give Notch sword", "op Notch"}, written)
}

func TestCompilePrefersVariationTemplate(t *testing.T) {
	var written []string
	orders := &mockOrders{
		getOrderFn: func(ctx context.Context, id int64) (*order.Order, error) {
			return &order.Order{
				ID:       id,
				PlayerID: "Notch",
				Items:    []order.Item{{ProductID: 10, VariationID: 42, Quantity: 1}},
			}, nil
		},
		setCommandsFn: func(ctx context.Context, orderID int64, commands []string) error {
			written = commands
			return nil
		},
	}
	products := &mockTemplates{templates: map[int64][]string{
		10: {"give %s stone"},
		42: {"give %s obsidian"},
	}}

	c := NewCompiler(orders, products)
	err := c.Compile(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, []string{"give Notch obsidian"}, written)
}

func TestCompileEmptyAccumulationWritesNothing(t *testing.T) {
	orders := &mockOrders{
		getOrderFn: func(ctx context.Context, id int64) (*order.Order, error) {
			return &order.Order{
				ID:       id,
				PlayerID: "Notch",
				Items:    []order.Item{{ProductID: 99, Quantity: 3}},
			}, nil
		},
		setCommandsFn: func(ctx context.Context, orderID int64, commands []string) error {
			t.Fatal("SetOrderCommands must not be called for an empty accumulation")
			return nil
		},
	}
	products := &mockTemplates{templates: map[int64][]string{}}

	c := NewCompiler(orders, products)
	assert.NoError(t, c.Compile(context.Background(), 1))
}

func TestCompileIsWriteOnce(t *testing.T) {
	orders := &mockOrders{
		getOrderFn: func(ctx context.Context, id int64) (*order.Order, error) {
			return &order.Order{
				ID:       id,
				PlayerID: "Notch",
				Commands: []string{"give Notch sword"},
				Items:    []order.Item{{ProductID: 10, Quantity: 1}},
			}, nil
		},
		setCommandsFn: func(ctx context.Context, orderID int64, commands []string) error {
			t.Fatal("an already-compiled order must not be recompiled")
			return nil
		},
	}
	products := &mockTemplates{templates: map[int64][]string{10: {"give %s axe"}}}

	c := NewCompiler(orders, products)
	assert.NoError(t, c.Compile(context.Background(), 1))
}
