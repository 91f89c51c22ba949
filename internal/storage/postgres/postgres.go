package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/woominecraft/wmcbridge/internal/types/admin"
	"github.com/woominecraft/wmcbridge/internal/types/order"
	"github.com/woominecraft/wmcbridge/internal/types/product"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	// проверяем, что БД жива
	if err := s.db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	// создаём таблицы
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS admins (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            parent_id BIGINT REFERENCES products(id),
            name TEXT NOT NULL,
            commands JSONB,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            status TEXT NOT NULL,
            player_id TEXT NOT NULL DEFAULT '',
            commands JSONB,
            delivered BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            product_id BIGINT NOT NULL,
            variation_id BIGINT,
            quantity INT NOT NULL
        )`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) CreateAdmin(ctx context.Context, a *admin.Admin) error {
	q := `INSERT INTO admins (login,password_hash,created_at) VALUES($1,$2,$3) RETURNING id`
	return s.db.QueryRowContext(ctx, q, a.Login, a.PasswordHash, a.CreatedAt).Scan(&a.ID)
}

func (s *PostgresStorage) FindAdminByLogin(ctx context.Context, login string) (*admin.Admin, error) {
	a := &admin.Admin{}
	q := `SELECT id,login,password_hash,created_at FROM admins WHERE login=$1`
	if err := s.db.QueryRowContext(ctx, q, login).
		Scan(&a.ID, &a.Login, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PostgresStorage) SaveProduct(ctx context.Context, p *product.Product) error {
	commands, err := marshalCommands(p.Commands)
	if err != nil {
		return err
	}
	var parent sql.NullInt64
	if p.ParentID != 0 {
		parent = sql.NullInt64{Int64: p.ParentID, Valid: true}
	}
	if p.ID == 0 {
		q := `INSERT INTO products (parent_id,name,commands,created_at) VALUES($1,$2,$3,$4) RETURNING id`
		return s.db.QueryRowContext(ctx, q, parent, p.Name, commands, p.CreatedAt).Scan(&p.ID)
	}
	// платформа присылает собственные ID товаров, поэтому upsert
	q := `
        INSERT INTO products (id,parent_id,name,commands,created_at)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE
        SET parent_id=EXCLUDED.parent_id, name=EXCLUDED.name, commands=EXCLUDED.commands`
	_, err = s.db.ExecContext(ctx, q, p.ID, parent, p.Name, commands, p.CreatedAt)
	return err
}

func (s *PostgresStorage) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	const q = `SELECT id, parent_id, name, commands, created_at FROM products WHERE id = $1`
	var p product.Product
	var parent sql.NullInt64
	var commands []byte
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &parent, &p.Name, &commands, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		p.ParentID = parent.Int64
	}
	if p.Commands, err = unmarshalCommands(commands); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStorage) ListProducts(ctx context.Context) ([]product.Product, error) {
	const q = `SELECT id, parent_id, name, commands, created_at FROM products ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var p product.Product
		var parent sql.NullInt64
		var commands []byte
		if err := rows.Scan(&p.ID, &parent, &p.Name, &commands, &p.CreatedAt); err != nil {
			return nil, err
		}
		if parent.Valid {
			p.ParentID = parent.Int64
		}
		if p.Commands, err = unmarshalCommands(commands); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) GetCommandTemplate(ctx context.Context, productID int64) ([]string, error) {
	const q = `SELECT commands FROM products WHERE id = $1`
	var commands []byte
	err := s.db.QueryRowContext(ctx, q, productID).Scan(&commands)
	if err == sql.ErrNoRows {
		// отсутствие товара равнозначно пустому шаблону
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return unmarshalCommands(commands)
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, o *order.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if o.ID == 0 {
		q := `INSERT INTO orders (status,player_id,created_at) VALUES($1,$2,$3) RETURNING id`
		if err := tx.QueryRowContext(ctx, q, o.Status, o.PlayerID, o.CreatedAt).Scan(&o.ID); err != nil {
			return err
		}
	} else {
		q := `INSERT INTO orders (id,status,player_id,created_at) VALUES($1,$2,$3,$4)`
		if _, err := tx.ExecContext(ctx, q, o.ID, o.Status, o.PlayerID, o.CreatedAt); err != nil {
			return err
		}
	}

	const qi = `INSERT INTO order_items (order_id,product_id,variation_id,quantity) VALUES($1,$2,$3,$4) RETURNING id`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		var variation sql.NullInt64
		if it.VariationID != 0 {
			variation = sql.NullInt64{Int64: it.VariationID, Valid: true}
		}
		if err := tx.QueryRowContext(ctx, qi, o.ID, it.ProductID, variation, it.Quantity).Scan(&it.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStorage) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	const q = `
    SELECT id, status, player_id, commands, delivered, created_at
    FROM orders WHERE id = $1`
	var o order.Order
	var commands []byte
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&o.ID, &o.Status, &o.PlayerID, &commands, &o.Delivered, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if o.Commands, err = unmarshalCommands(commands); err != nil {
		return nil, err
	}

	const qi = `
        SELECT id, order_id, product_id, variation_id, quantity
        FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, qi, id)
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

func (s *PostgresStorage) SetOrderCommands(ctx context.Context, orderID int64, commands []string) error {
	raw, err := marshalCommands(commands)
	if err != nil {
		return err
	}
	const q = `UPDATE orders SET commands = $1 WHERE id = $2`
	_, err = s.db.ExecContext(ctx, q, raw, orderID)
	return err
}

func (s *PostgresStorage) ListUndelivered(ctx context.Context) ([]order.Order, error) {
	const q = `
        SELECT id, status, player_id, commands, delivered, created_at
        FROM orders
        WHERE status = 'completed' AND player_id <> '' AND NOT delivered
        ORDER BY id
    `
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		var commands []byte
		if err := rows.Scan(&o.ID, &o.Status, &o.PlayerID, &commands, &o.Delivered, &o.CreatedAt); err != nil {
			return nil, err
		}
		if o.Commands, err = unmarshalCommands(commands); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) MarkDelivered(ctx context.Context, orderIDs []int64) error {
	// по одному, как и платформа-оригинал: неизвестный ID — тихий no-op
	const q = `UPDATE orders SET delivered = TRUE WHERE id = $1`
	for _, id := range orderIDs {
		if _, err := s.db.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStorage) ResetDelivered(ctx context.Context, playerID string, orderID int64) error {
	if orderID != 0 {
		const q = `UPDATE orders SET delivered = FALSE WHERE player_id = $1 AND id = $2`
		_, err := s.db.ExecContext(ctx, q, playerID, orderID)
		return err
	}
	const q = `UPDATE orders SET delivered = FALSE WHERE player_id = $1`
	_, err := s.db.ExecContext(ctx, q, playerID)
	return err
}

func marshalCommands(commands []string) ([]byte, error) {
	if len(commands) == 0 {
		return nil, nil
	}
	return json.Marshal(commands)
}

func unmarshalCommands(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode commands: %w", err)
	}
	return out, nil
}
