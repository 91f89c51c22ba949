// Package sqlite provides a SQLite-backed storage implementation for
// single-host deployments where running Postgres is not worth it.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/woominecraft/wmcbridge/internal/types/admin"
	"github.com/woominecraft/wmcbridge/internal/types/order"
	"github.com/woominecraft/wmcbridge/internal/types/product"

	_ "modernc.org/sqlite"
)

// Store persists bridge state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &Store{sqlDB: sqlDB}
	if err := s.initSchema(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS admins (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at INTEGER NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            parent_id INTEGER REFERENCES products(id),
            name TEXT NOT NULL,
            commands TEXT,
            created_at INTEGER NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            status TEXT NOT NULL,
            player_id TEXT NOT NULL DEFAULT '',
            commands TEXT,
            delivered INTEGER NOT NULL DEFAULT 0,
            created_at INTEGER NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            order_id INTEGER NOT NULL REFERENCES orders(id),
            product_id INTEGER NOT NULL,
            variation_id INTEGER,
            quantity INTEGER NOT NULL
        )`,
	}
	for _, q := range stmts {
		if _, err := s.sqlDB.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) CreateAdmin(ctx context.Context, a *admin.Admin) error {
	const q = `INSERT INTO admins (login,password_hash,created_at) VALUES(?,?,?)`
	res, err := s.sqlDB.ExecContext(ctx, q, a.Login, a.PasswordHash, toMillis(a.CreatedAt))
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (s *Store) FindAdminByLogin(ctx context.Context, login string) (*admin.Admin, error) {
	const q = `SELECT id,login,password_hash,created_at FROM admins WHERE login=?`
	a := &admin.Admin{}
	var created int64
	if err := s.sqlDB.QueryRowContext(ctx, q, login).
		Scan(&a.ID, &a.Login, &a.PasswordHash, &created); err != nil {
		return nil, err
	}
	a.CreatedAt = fromMillis(created)
	return a, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *product.Product) error {
	commands, err := marshalCommands(p.Commands)
	if err != nil {
		return err
	}
	var parent sql.NullInt64
	if p.ParentID != 0 {
		parent = sql.NullInt64{Int64: p.ParentID, Valid: true}
	}
	if p.ID == 0 {
		const q = `INSERT INTO products (parent_id,name,commands,created_at) VALUES(?,?,?,?)`
		res, err := s.sqlDB.ExecContext(ctx, q, parent, p.Name, commands, toMillis(p.CreatedAt))
		if err != nil {
			return err
		}
		p.ID, err = res.LastInsertId()
		return err
	}
	const q = `
        INSERT INTO products (id,parent_id,name,commands,created_at)
        VALUES (?,?,?,?,?)
        ON CONFLICT (id) DO UPDATE
        SET parent_id=excluded.parent_id, name=excluded.name, commands=excluded.commands`
	_, err = s.sqlDB.ExecContext(ctx, q, p.ID, parent, p.Name, commands, toMillis(p.CreatedAt))
	return err
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	const q = `SELECT id, parent_id, name, commands, created_at FROM products WHERE id = ?`
	var p product.Product
	var parent sql.NullInt64
	var commands sql.NullString
	var created int64
	err := s.sqlDB.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &parent, &p.Name, &commands, &created)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		p.ParentID = parent.Int64
	}
	p.CreatedAt = fromMillis(created)
	if p.Commands, err = unmarshalCommands(commands); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]product.Product, error) {
	const q = `SELECT id, parent_id, name, commands, created_at FROM products ORDER BY id`
	rows, err := s.sqlDB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var p product.Product
		var parent sql.NullInt64
		var commands sql.NullString
		var created int64
		if err := rows.Scan(&p.ID, &parent, &p.Name, &commands, &created); err != nil {
			return nil, err
		}
		if parent.Valid {
			p.ParentID = parent.Int64
		}
		p.CreatedAt = fromMillis(created)
		if p.Commands, err = unmarshalCommands(commands); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetCommandTemplate(ctx context.Context, productID int64) ([]string, error) {
	const q = `SELECT commands FROM products WHERE id = ?`
	var commands sql.NullString
	err := s.sqlDB.QueryRowContext(ctx, q, productID).Scan(&commands)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalCommands(commands)
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if o.ID == 0 {
		const q = `INSERT INTO orders (status,player_id,created_at) VALUES(?,?,?)`
		res, err := tx.ExecContext(ctx, q, o.Status, o.PlayerID, toMillis(o.CreatedAt))
		if err != nil {
			return err
		}
		if o.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	} else {
		const q = `INSERT INTO orders (id,status,player_id,created_at) VALUES(?,?,?,?)`
		if _, err := tx.ExecContext(ctx, q, o.ID, o.Status, o.PlayerID, toMillis(o.CreatedAt)); err != nil {
			return err
		}
	}

	const qi = `INSERT INTO order_items (order_id,product_id,variation_id,quantity) VALUES(?,?,?,?)`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		var variation sql.NullInt64
		if it.VariationID != 0 {
			variation = sql.NullInt64{Int64: it.VariationID, Valid: true}
		}
		res, err := tx.ExecContext(ctx, qi, o.ID, it.ProductID, variation, it.Quantity)
		if err != nil {
			return err
		}
		if it.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	const q = `
    SELECT id, status, player_id, commands, delivered, created_at
    FROM orders WHERE id = ?`
	var o order.Order
	var commands sql.NullString
	var created int64
	err := s.sqlDB.QueryRowContext(ctx, q, id).
		Scan(&o.ID, &o.Status, &o.PlayerID, &commands, &o.Delivered, &created)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = fromMillis(created)
	if o.Commands, err = unmarshalCommands(commands); err != nil {
		return nil, err
	}

	const qi = `
        SELECT id, order_id, product_id, variation_id, quantity
        FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := s.sqlDB.QueryContext(ctx, qi, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it order.Item
		var variation sql.NullInt64
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &variation, &it.Quantity); err != nil {
			return nil, err
		}
		if variation.Valid {
			it.VariationID = variation.Int64
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (s *Store) SetOrderCommands(ctx context.Context, orderID int64, commands []string) error {
	raw, err := marshalCommands(commands)
	if err != nil {
		return err
	}
	const q = `UPDATE orders SET commands = ? WHERE id = ?`
	_, err = s.sqlDB.ExecContext(ctx, q, raw, orderID)
	return err
}

func (s *Store) ListUndelivered(ctx context.Context) ([]order.Order, error) {
	const q = `
        SELECT id, status, player_id, commands, delivered, created_at
        FROM orders
        WHERE status = 'completed' AND player_id <> '' AND delivered = 0
        ORDER BY id
    `
	rows, err := s.sqlDB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		var commands sql.NullString
		var created int64
		if err := rows.Scan(&o.ID, &o.Status, &o.PlayerID, &commands, &o.Delivered, &created); err != nil {
			return nil, err
		}
		o.CreatedAt = fromMillis(created)
		if o.Commands, err = unmarshalCommands(commands); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) MarkDelivered(ctx context.Context, orderIDs []int64) error {
	const q = `UPDATE orders SET delivered = 1 WHERE id = ?`
	for _, id := range orderIDs {
		if _, err := s.sqlDB.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ResetDelivered(ctx context.Context, playerID string, orderID int64) error {
	if orderID != 0 {
		const q = `UPDATE orders SET delivered = 0 WHERE player_id = ? AND id = ?`
		_, err := s.sqlDB.ExecContext(ctx, q, playerID, orderID)
		return err
	}
	const q = `UPDATE orders SET delivered = 0 WHERE player_id = ?`
	_, err := s.sqlDB.ExecContext(ctx, q, playerID)
	return err
}

func marshalCommands(commands []string) (sql.NullString, error) {
	if len(commands) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(commands)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func unmarshalCommands(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, fmt.Errorf("decode commands: %w", err)
	}
	return out, nil
}
