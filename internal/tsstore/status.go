package tsstore

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
)

// estimatedBytesPerPoint is the fallback when the backend cannot report a table size.
const estimatedBytesPerPoint = 64

// GetStatus returns status information about the point store.
func (ps *PointStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(ps.backend),
		Connected: ps.db != nil,
	}

	if ps.disabled() {
		return status, nil
	}

	status.SchemaVersion = ps.schemaVersion()

	quotedTableName := quoteTableName(ps.tableName, ps.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := ps.db.QueryRow(countQuery).Scan(&status.TotalPoints); err != nil {
		return status, fmt.Errorf("failed to get total points: %w", err)
	}

	if status.TotalPoints == 0 {
		return status, nil
	}

	seriesQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM (SELECT DISTINCT measurement, station, module FROM %s) series", quotedTableName)
	if err := ps.db.QueryRow(seriesQuery).Scan(&status.TotalSeries); err != nil {
		return status, fmt.Errorf("failed to get total series: %w", err)
	}

	var oldestTs, lastTs int64
	boundsQuery := fmt.Sprintf("SELECT MIN(ts), MAX(ts) FROM %s", quotedTableName)
	if err := ps.db.QueryRow(boundsQuery).Scan(&oldestTs, &lastTs); err != nil {
		return status, fmt.Errorf("failed to get point time bounds: %w", err)
	}
	status.OldestPointTime = time.Unix(oldestTs, 0)
	status.LastPointTime = time.Unix(lastTs, 0)

	status.TableSizeBytes = ps.tableSize(status.TotalPoints)
	return status, nil
}

// schemaVersion reads the applied migration version, or 0 if it cannot be determined.
func (ps *PointStoreImpl) schemaVersion() uint {
	var version sql.NullInt64
	query := fmt.Sprintf("SELECT version FROM %s LIMIT 1", quoteTableName(migrationsTable, ps.backend))
	if err := ps.db.QueryRow(query).Scan(&version); err != nil || !version.Valid || version.Int64 < 0 {
		return 0
	}
	return uint(version.Int64)
}

// tableSize asks the backend for the on-disk size of the points table.
func (ps *PointStoreImpl) tableSize(totalPoints int64) int64 {
	fallback := totalPoints * estimatedBytesPerPoint
	var size int64

	switch ps.backend {
	case schema.SQLiteBackend:
		// Whole database file; the points table dominates it
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := ps.db.QueryRow(sizeQuery).Scan(&size); err != nil {
			return 0
		}

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ps.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := ps.db.QueryRow(sizeQuery, cfg.DBName, ps.tableName).Scan(&size); err != nil {
			return fallback
		}

	case schema.PostgreSQLBackend:
		if err := ps.db.QueryRow("SELECT pg_total_relation_size($1)", ps.tableName).Scan(&size); err != nil {
			return fallback
		}

	default:
		return fallback
	}
	return size
}

// PrintStoreStatus prints store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Schema Version: %d\n", status.SchemaVersion)
	_, _ = fmt.Fprintf(w, "Total Points: %d\n", status.TotalPoints)
	if status.TotalPoints > 0 {
		_, _ = fmt.Fprintf(w, "Total Series: %d\n", status.TotalSeries)
		_, _ = fmt.Fprintf(w, "Last Point: %s\n", status.LastPointTime.Format(contract.DateTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Point: %s\n", status.OldestPointTime.Format(contract.DateTimeFormat))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %d bytes\n", status.TableSizeBytes)
}
