package order

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusRefunded   OrderStatus = "refunded"
)

type Item struct {
	ID          int64 `db:"id" json:"-"`
	OrderID     int64 `db:"order_id" json:"-"`
	ProductID   int64 `db:"product_id" json:"product_id"`
	VariationID int64 `db:"variation_id" json:"variation_id,omitempty"`
	Quantity    int   `db:"quantity" json:"quantity"`
}

type Order struct {
	ID        int64       `db:"id" json:"id"`
	Status    OrderStatus `db:"status" json:"status"`
	PlayerID  string      `db:"player_id" json:"player_id"`
	Commands  []string    `db:"commands" json:"commands,omitempty"`
	Delivered bool        `db:"delivered" json:"-"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	Items     []Item      `db:"-" json:"items"`
}

// EffectiveProduct возвращает ID товара, чьи команды применяются к позиции:
// вариация, если она указана, иначе базовый товар.
func (i Item) EffectiveProduct() int64 {
	if i.VariationID != 0 {
		return i.VariationID
	}
	return i.ProductID
}
