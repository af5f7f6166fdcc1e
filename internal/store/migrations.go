package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id               INTEGER PRIMARY KEY,
	client_name      TEXT NOT NULL,
	package_details  TEXT NOT NULL DEFAULT '',
	delivery_address TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'SUBMITTED',
	cms_status       TEXT NOT NULL DEFAULT '',
	wms_status       TEXT NOT NULL DEFAULT '',
	ros_status       TEXT NOT NULL DEFAULT '',
	user_id          TEXT NOT NULL DEFAULT '',
	created_at       DATETIME,
	updated_at       DATETIME,
	fetched_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
