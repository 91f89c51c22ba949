package product

import "time"

// Product is a purchasable item (or a variation of one, linked through
// ParentID). Commands is the ordered command template attached to it; a
// template entry may contain the %s player placeholder.
type Product struct {
	ID        int64     `db:"id" json:"id"`
	ParentID  int64     `db:"parent_id" json:"parent_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Commands  []string  `db:"commands" json:"commands"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
