package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver
)

// DefaultTable is the table artifacts are stored in.
const DefaultTable = "mirror_artifacts"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL stores artifacts in a sqlite or postgres table.
type SQL struct {
	db      *sql.DB
	dialect string
	table   string
}

// OpenSQL opens the database and creates the artifact table if needed.
// dialect is "sqlite" or "postgres".
func OpenSQL(ctx context.Context, dialect, dsn, table string) (*SQL, error) {
	var driver string
	switch dialect {
	case "sqlite":
		driver = "sqlite"
	case "postgres":
		driver = "pgx"
	default:
		return nil, fmt.Errorf("store: unsupported sql dialect %q", dialect)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dialect, err)
	}
	s, err := NewSQL(ctx, db, dialect, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an open database.
func NewSQL(ctx context.Context, db *sql.DB, dialect, table string) (*SQL, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}
	s := &SQL{db: db, dialect: dialect, table: table}
	blob := "BLOB"
	if dialect == "postgres" {
		blob = "BYTEA"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		data %s NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, table, blob)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("store: create table: %w", err)
	}
	return s, nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	query := s.rebind("SELECT data FROM " + s.table + " WHERE key = ?")
	err := s.db.QueryRowContext(ctx, query, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	return data, nil
}

func (s *SQL) Put(ctx context.Context, key string, data []byte) error {
	query := s.rebind("INSERT INTO " + s.table + " (key, data) VALUES (?, ?) " +
		"ON CONFLICT (key) DO UPDATE SET data = excluded.data")
	if _, err := s.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQL) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQL) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
