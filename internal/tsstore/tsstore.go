// Package tsstore persists station measurements as time-series points.
package tsstore

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// pointsTable holds every persisted point, keyed by measurement, station, module and time.
const pointsTable = "station_points"

// PointStoreImpl handles durable point storage using various database backends.
type PointStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.PointStore = &PointStoreImpl{} // Compile-time check

// GetDBFilePath returns the path to the SQLite DB file for point storage.
func GetDBFilePath() string {
	return contract.GetStoreDBFilePath()
}

// driverName returns the database/sql driver registered for the backend.
func driverName(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "pgx"
	default:
		return "sqlite"
	}
}

// openDB opens and pings a connection for one of the SQL backends.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		db, err = sql.Open(driverName(backend), dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open(driverName(backend), connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open(driverName(backend), connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, nil
}

// NewPointStore opens the store for the backend and makes sure its schema is
// current, creating the points table on first use.
func NewPointStore(backend schema.DatabaseBackend, connStr string) (*PointStoreImpl, error) {
	if err := validateTableName(pointsTable); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		// No-op store: writes are discarded and every series starts from scratch
		return &PointStoreImpl{
			tableName: pointsTable,
			backend:   backend,
			connStr:   connStr,
		}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare table %s: %w", pointsTable, err)
	}

	return &PointStoreImpl{
		db:        db,
		tableName: pointsTable,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// Close closes the underlying DB connection.
func (ps *PointStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

// disabled reports whether the store discards everything.
func (ps *PointStoreImpl) disabled() bool {
	return ps.backend == schema.NoneBackend || ps.db == nil
}
