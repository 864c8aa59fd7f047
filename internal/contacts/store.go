package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrUnavailable reports that the contacts store cannot be opened. It is a
// startup failure, never a per-query one.
var ErrUnavailable = errors.New("contacts store unavailable")

// ErrNotFound is returned by Lookup when no row has the requested id.
var ErrNotFound = errors.New("contact not found")

const defaultPoolSize = 2

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id                  INTEGER PRIMARY KEY,
	lookup_key          TEXT NOT NULL UNIQUE,
	display_name        TEXT NOT NULL DEFAULT '',
	photo_thumbnail_uri TEXT NOT NULL DEFAULT '',
	sort_key            TEXT NOT NULL DEFAULT '',
	in_visible_group    INTEGER NOT NULL DEFAULT 1,
	phone               TEXT NOT NULL DEFAULT '',
	email               TEXT NOT NULL DEFAULT '',
	organization        TEXT NOT NULL DEFAULT '',
	note                TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS contacts_sort_key ON contacts (sort_key COLLATE NOCASE);
`

// The projection is identical for filtered and unfiltered queries.
const (
	projection = `id, lookup_key, display_name, photo_thumbnail_uri, sort_key`
	selection  = `display_name <> '' AND in_visible_group = 1`
	sortOrder  = `sort_key COLLATE ` + SortCollation + `, id`
)

// Config holds the parameters for opening a contacts store.
type Config struct {
	// Path is the SQLite database file. It must already exist; use Create
	// to initialize a new one.
	Path string

	// PoolSize is the number of pooled connections. Defaults to 2.
	PoolSize int

	// Logger receives open/close and query failure messages. A nil
	// Logger discards output.
	Logger *slog.Logger
}

// Store is the SQLite-backed contacts provider. It is safe for concurrent
// use; each call borrows its own pooled connection.
type Store struct {
	pool   *sqlitex.Pool
	path   string
	logger *slog.Logger
}

// Open opens an existing contacts database. A missing file or a database
// without the contacts table is reported as ErrUnavailable.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("%w: path is empty", ErrUnavailable)
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	store, err := openPool(cfg, sqlite.OpenReadWrite|sqlite.OpenWAL|sqlite.OpenURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := store.checkSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return store, nil
}

// Create opens the database at path, creating the file and schema when
// they do not exist yet.
func Create(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("create contacts store: path is empty")
	}
	store, err := openPool(cfg, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenWAL|sqlite.OpenURI)
	if err != nil {
		return nil, fmt.Errorf("create contacts store: %w", err)
	}
	conn, err := store.pool.Take(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create contacts store: %w", err)
	}
	defer store.pool.Put(conn)
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create contacts schema: %w", err)
	}
	return store, nil
}

func openPool(cfg Config, flags sqlite.OpenFlags) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	size := cfg.PoolSize
	if size <= 0 {
		size = defaultPoolSize
	}
	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		Flags:       flags,
		PoolSize:    size,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("contacts store opened", "path", cfg.Path, "pool_size", size)
	return &Store{pool: pool, path: cfg.Path, logger: logger}, nil
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

func prepareConn(conn *sqlite.Conn) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := registerCollation(conn); err != nil {
		return fmt.Errorf("register %s collation: %w", SortCollation, err)
	}
	return nil
}

func (s *Store) checkSchema(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	found := false
	err = sqlitex.Execute(conn,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'contacts'`,
		&sqlitex.ExecOptions{ResultFunc: func(*sqlite.Stmt) error {
			found = true
			return nil
		}})
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	if !found {
		return fmt.Errorf("no contacts table in %s", s.path)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Query returns visible contacts with a non-empty display name, ordered by
// sort key. A non-empty term restricts the result to names containing it.
func (s *Store) Query(ctx context.Context, term string) ([]Record, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	query := `SELECT ` + projection + ` FROM contacts WHERE ` + selection
	var args []any
	if term != "" {
		query += ` AND display_name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(term)+"%")
	}
	query += ` ORDER BY ` + sortOrder

	records := []Record{}
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			records = append(records, Record{
				ID:          stmt.ColumnInt64(0),
				LookupKey:   stmt.ColumnText(1),
				DisplayName: stmt.ColumnText(2),
				PhotoRef:    stmt.ColumnText(3),
				SortKey:     stmt.ColumnText(4),
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	return records, nil
}

// Lookup loads the detail fields for one contact.
func (s *Store) Lookup(ctx context.Context, id int64) (Detail, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Detail{}, fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var detail Detail
	found := false
	err = sqlitex.Execute(conn,
		`SELECT `+projection+`, phone, email, organization, note FROM contacts WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				detail = Detail{
					Record: Record{
						ID:          stmt.ColumnInt64(0),
						LookupKey:   stmt.ColumnText(1),
						DisplayName: stmt.ColumnText(2),
						PhotoRef:    stmt.ColumnText(3),
						SortKey:     stmt.ColumnText(4),
					},
					Phone:        stmt.ColumnText(5),
					Email:        stmt.ColumnText(6),
					Organization: stmt.ColumnText(7),
					Note:         stmt.ColumnText(8),
				}
				return nil
			},
		})
	if err != nil {
		return Detail{}, fmt.Errorf("lookup contact %d: %w", id, err)
	}
	if !found {
		return Detail{}, fmt.Errorf("lookup contact %d: %w", id, ErrNotFound)
	}
	return detail, nil
}

// Upsert inserts or replaces contacts keyed by lookup key inside a single
// transaction. Empty sort keys are derived from the display name.
func (s *Store) Upsert(ctx context.Context, entries []Entry) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	release := sqlitex.Save(conn)
	defer release(&err)

	for _, e := range entries {
		sortKey := e.SortKey
		if sortKey == "" {
			sortKey = SortKey(e.Name)
		}
		visible := 1
		if e.Hidden {
			visible = 0
		}
		err = sqlitex.Execute(conn, `
INSERT INTO contacts (lookup_key, display_name, photo_thumbnail_uri, sort_key, in_visible_group, phone, email, organization, note)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (lookup_key) DO UPDATE SET
	display_name = excluded.display_name,
	photo_thumbnail_uri = excluded.photo_thumbnail_uri,
	sort_key = excluded.sort_key,
	in_visible_group = excluded.in_visible_group,
	phone = excluded.phone,
	email = excluded.email,
	organization = excluded.organization,
	note = excluded.note`,
			&sqlitex.ExecOptions{Args: []any{
				e.LookupKey, e.Name, e.Photo, sortKey, visible, e.Phone, e.Email, e.Organization, e.Note,
			}})
		if err != nil {
			return fmt.Errorf("upsert contact %q: %w", e.LookupKey, err)
		}
	}
	return nil
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("contacts store close error", "path", s.path, "error", err)
		return fmt.Errorf("close contacts store: %w", err)
	}
	s.logger.Info("contacts store closed", "path", s.path)
	return nil
}

func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
