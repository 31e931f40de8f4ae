package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rushteam/shoprec/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS products (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS interactions (
	seq              INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          TEXT NOT NULL,
	product_id       TEXT NOT NULL,
	interaction_type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id, seq);
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	name    TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore 是基于 SQLite 的 Backend。
// 目录顺序与交互写入顺序都由自增 seq 决定。
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite 打开（或创建）数据库并建表；path 为 ":memory:" 时使用内存库。
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// 单连接避免 "database is locked"，也让 :memory: 库在连接间共享
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// maxQueryVars 是单条 IN 查询绑定的参数上限，低于 SQLite 的 SQLITE_MAX_VARIABLE_NUMBER。
const maxQueryVars = 500

// FetchProducts 按目录顺序返回商品；ids 为空时返回整个目录。
// ids 去重后分批查询，结果按 seq 合并。
func (s *SQLiteStore) FetchProducts(ctx context.Context, ids []string) ([]core.Product, error) {
	const cols = "SELECT seq, id, name, category, description FROM products"
	if len(ids) == 0 {
		rows, err := s.queryProducts(ctx, cols+" ORDER BY seq")
		if err != nil {
			return nil, err
		}
		return productsOf(rows), nil
	}

	ids = uniqueIDs(ids)
	var all []seqProduct
	for start := 0; start < len(ids); start += maxQueryVars {
		chunk := ids[start:min(start+maxQueryVars, len(ids))]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		rows, err := s.queryProducts(ctx,
			cols+" WHERE id IN (?"+strings.Repeat(",?", len(chunk)-1)+")", args...)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	return productsOf(all), nil
}

type seqProduct struct {
	seq int64
	core.Product
}

func (s *SQLiteStore) queryProducts(ctx context.Context, query string, args ...any) ([]seqProduct, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var out []seqProduct
	for rows.Next() {
		var p seqProduct
		if err := rows.Scan(&p.seq, &p.ID, &p.Name, &p.Category, &p.Description); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func productsOf(rows []seqProduct) []core.Product {
	if rows == nil {
		return nil
	}
	out := make([]core.Product, len(rows))
	for i, r := range rows {
		out[i] = r.Product
	}
	return out
}

func (s *SQLiteStore) FetchInteractions(ctx context.Context, userID string) ([]core.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, product_id, interaction_type FROM interactions WHERE user_id = ? ORDER BY seq", userID)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var out []core.InteractionRecord
	for rows.Next() {
		var rec core.InteractionRecord
		var typ string
		if err := rows.Scan(&rec.UserID, &rec.ProductID, &typ); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		rec.Type = core.InteractionType(typ)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id, name FROM users ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.UserID, &u.Name); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutProducts(ctx context.Context, products []core.Product) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range products {
			if _, err := tx.ExecContext(ctx, `INSERT INTO products (id, name, category, description)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, category = excluded.category,
					description = excluded.description`,
				p.ID, p.Name, p.Category, p.Description); err != nil {
				return fmt.Errorf("upserting product %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) AppendInteraction(ctx context.Context, rec core.InteractionRecord) error {
	if _, err := core.ParseInteractionType(string(rec.Type)); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO interactions (user_id, product_id, interaction_type) VALUES (?, ?, ?)",
		rec.UserID, rec.ProductID, string(rec.Type)); err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PutUsers(ctx context.Context, users []core.User) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, u := range users {
			if _, err := tx.ExecContext(ctx, `INSERT INTO users (user_id, name) VALUES (?, ?)
				ON CONFLICT(user_id) DO UPDATE SET name = excluded.name`, u.UserID, u.Name); err != nil {
				return fmt.Errorf("upserting user %s: %w", u.UserID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

var _ Backend = (*SQLiteStore)(nil)
