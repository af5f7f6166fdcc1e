package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/swiftlogistics/swifttrack/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertOrders inserts or replaces a batch of orders fetched from the
// gateway.
func (s *SQLiteStore) UpsertOrders(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO orders (
			id, client_name, package_details, delivery_address,
			status, cms_status, wms_status, ros_status,
			user_id, created_at, updated_at, fetched_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		_, err = stmt.ExecContext(ctx,
			o.ID, o.ClientName, o.PackageDetails, o.DeliveryAddress,
			o.Status, o.CmsStatus, o.WmsStatus, o.RosStatus,
			o.UserID, nullableTime(o.CreatedAt), nullableTime(o.UpdatedAt),
			o.FetchedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting order %d: %w", o.ID, err)
		}
	}

	return tx.Commit()
}

// GetOrders retrieves cached orders matching the provided filter.
func (s *SQLiteStore) GetOrders(
	ctx context.Context,
	filter OrderFilter,
) ([]model.Order, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions,
			"(client_name LIKE ? OR package_details LIKE ? OR delivery_address LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q, q)
	}

	query := "SELECT * FROM orders"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "created_at"
	if filter.SortBy != "" {
		allowedSorts := map[string]bool{
			"client_name": true,
			"status":      true,
			"created_at":  true,
			"updated_at":  true,
		}
		if allowedSorts[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// GetOrderByID retrieves a single cached order by its ID. Returns
// (nil, nil) when the order is not cached.
func (s *SQLiteStore) GetOrderByID(ctx context.Context, id int64) (*model.Order, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM orders WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying order %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying order %d: %w", id, err)
		}
		return nil, nil
	}

	o, err := scanOrder(rows)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOrdersNotIn removes cached orders whose IDs are absent from ids.
// Called after a full refresh so orders deleted server-side disappear
// locally too. An empty ids list clears the cache.
func (s *SQLiteStore) DeleteOrdersNotIn(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		_, err := s.db.ExecContext(ctx, "DELETE FROM orders")
		if err != nil {
			return fmt.Errorf("clearing order cache: %w", err)
		}
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM orders WHERE id NOT IN (?)", ids)
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("pruning order cache: %w", err)
	}
	return nil
}

// scanOrder scans an order row from a sqlx.Rows result set.
func scanOrder(rows *sqlx.Rows) (model.Order, error) {
	var (
		o         model.Order
		createdAt sql.NullTime
		updatedAt sql.NullTime
		fetchedAt time.Time
	)

	err := rows.Scan(
		&o.ID, &o.ClientName, &o.PackageDetails, &o.DeliveryAddress,
		&o.Status, &o.CmsStatus, &o.WmsStatus, &o.RosStatus,
		&o.UserID, &createdAt, &updatedAt, &fetchedAt,
	)
	if err != nil {
		return model.Order{}, fmt.Errorf("scanning order row: %w", err)
	}

	if createdAt.Valid {
		o.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		o.UpdatedAt = updatedAt.Time
	}
	o.FetchedAt = fetchedAt

	return o, nil
}

// nullableTime maps the zero time to NULL for storage.
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
