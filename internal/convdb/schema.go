package convdb

// schemaVersion is the target schema for this build. The table layout is a
// cache, so a version bump drops and recreates it rather than migrating.
const schemaVersion = 1

var schema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS conversions (
	file_name  TEXT NOT NULL,
	conv_key   TEXT NOT NULL,
	file_size  INTEGER NOT NULL,
	file_mtime TEXT NOT NULL,
	value      BLOB NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (file_name, conv_key)
);
`
