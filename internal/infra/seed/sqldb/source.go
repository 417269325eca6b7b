// Package sqldb loads house seed rows from a SQL table through database/sql,
// using the pure-Go SQLite driver or pgx for PostgreSQL.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"housingapi/pkg/domain"
	"regexp"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

const (
	// DriverSQLite is the database/sql name of the modernc SQLite driver.
	DriverSQLite = "sqlite"
	// DriverPostgres is the database/sql name of the pgx driver.
	DriverPostgres = "pgx"

	// DefaultTable is read when no table name is configured.
	DefaultTable     = "houses"
	defaultSQLite    = "houses.db"
	defaultPostgres  = "postgres://localhost/housing?sslmode=disable"
	identifierSyntax = `^[A-Za-z_][A-Za-z0-9_]*$`
)

var (
	sqlOpen    = sql.Open
	openMu     sync.Mutex
	identifier = regexp.MustCompile(identifierSyntax)
)

// Source reads every row of one table. Row order is the table's natural
// scan order, which is rowid order for SQLite.
type Source struct {
	driver string
	dsn    string
	table  string
}

// NewSQLite reads table from the SQLite database file at path.
func NewSQLite(path, table string) (*Source, error) {
	if path == "" {
		path = defaultSQLite
	}
	return newSource(DriverSQLite, path, table)
}

// NewPostgres reads table from the PostgreSQL database at dsn.
func NewPostgres(dsn, table string) (*Source, error) {
	if dsn == "" {
		dsn = defaultPostgres
	}
	return newSource(DriverPostgres, dsn, table)
}

func newSource(driver, dsn, table string) (*Source, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Source{driver: driver, dsn: dsn, table: table}, nil
}

// Driver returns the database/sql driver name.
func (s *Source) Driver() string { return s.driver }

// Table returns the configured table name.
func (s *Source) Table() string { return s.table }

// Query returns the SELECT statement issued by Load.
func (s *Source) Query() string {
	cols := make([]string, len(domain.Fields))
	for i, f := range domain.Fields {
		cols[i] = `"` + f.Name + `"`
	}
	return fmt.Sprintf(`SELECT %s FROM "%s"`, strings.Join(cols, ", "), s.table)
}

// Load opens the database, reads the table and closes the connection.
func (s *Source) Load(ctx context.Context) ([]domain.House, error) {
	openMu.Lock()
	db, err := sqlOpen(s.driver, s.dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.driver, err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", s.driver, err)
	}
	return ReadTable(ctx, db, s.Query())
}

// ReadTable runs query and scans each row into a house. The query must
// select the schema columns in domain.Fields order.
func ReadTable(ctx context.Context, db *sql.DB, query string) ([]domain.House, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select houses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var houses []domain.House
	for row := 0; rows.Next(); row++ {
		var h domain.House
		dest := make([]any, len(domain.Fields))
		for i, f := range domain.Fields {
			dest[i] = f.Dest(&h)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", row, err)
		}
		houses = append(houses, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate houses: %w", err)
	}
	return houses, nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
