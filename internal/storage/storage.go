package storage

import (
	"context"

	"github.com/woominecraft/wmcbridge/internal/types/admin"
	"github.com/woominecraft/wmcbridge/internal/types/order"
	"github.com/woominecraft/wmcbridge/internal/types/product"
)

// ProductRepository отвечает за товары и их шаблоны команд.
type ProductRepository interface {
	SaveProduct(ctx context.Context, p *product.Product) error
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	// GetCommandTemplate returns nil (no error) when the product does not
	// exist or carries no template.
	GetCommandTemplate(ctx context.Context, productID int64) ([]string, error)
}

// OrderRepository отвечает за операции над заказами.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	SetOrderCommands(ctx context.Context, orderID int64, commands []string) error
	// ListUndelivered returns completed orders with a player id that have
	// not been marked delivered yet.
	ListUndelivered(ctx context.Context) ([]order.Order, error)
	// MarkDelivered is idempotent; unknown IDs are silent no-ops.
	MarkDelivered(ctx context.Context, orderIDs []int64) error
	// ResetDelivered flips delivered back to false for a player, optionally
	// scoped to a single order (orderID == 0 means all of them).
	ResetDelivered(ctx context.Context, playerID string, orderID int64) error
}

// AdminRepository отвечает за учётные записи операторов магазина.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, a *admin.Admin) error
	FindAdminByLogin(ctx context.Context, login string) (*admin.Admin, error)
}

// Storage объединяет все репозитории.
type Storage interface {
	ProductRepository
	OrderRepository
	AdminRepository

	// Для управления соединением
	Ping(ctx context.Context) error
	Close() error
}
