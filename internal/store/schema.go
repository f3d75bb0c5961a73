package store

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'maintainer',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_user_id INTEGER NOT NULL REFERENCES users(id),
	token_hash TEXT NOT NULL UNIQUE,
	scopes TEXT NOT NULL DEFAULT '',
	revoked_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS uploader_identities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	slug TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS uploader_identity_members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	identity_id INTEGER NOT NULL REFERENCES uploader_identities(id),
	role TEXT NOT NULL DEFAULT 'member',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, identity_id)
);

CREATE TABLE IF NOT EXISTS packages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id INTEGER NOT NULL REFERENCES uploader_identities(id),
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	is_deprecated BOOLEAN NOT NULL DEFAULT 0,
	is_pinned BOOLEAN NOT NULL DEFAULT 0,
	date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	date_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	uuid4 TEXT NOT NULL UNIQUE,
	UNIQUE (owner_id, name),
	UNIQUE (owner_id, slug)
);

CREATE TABLE IF NOT EXISTS package_versions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	package_id INTEGER NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
	version_number TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	website_url TEXT NOT NULL DEFAULT '',
	readme TEXT NOT NULL DEFAULT '',
	icon TEXT NOT NULL DEFAULT '',
	file TEXT NOT NULL DEFAULT '',
	downloads INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	uuid4 TEXT NOT NULL UNIQUE,
	UNIQUE (package_id, version_number)
);

CREATE TABLE IF NOT EXISTS package_dependencies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id INTEGER NOT NULL REFERENCES package_versions(id) ON DELETE CASCADE,
	depends_on_version_id INTEGER NOT NULL REFERENCES package_versions(id),
	UNIQUE (version_id, depends_on_version_id)
);

CREATE TABLE IF NOT EXISTS package_compatibilities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	package_version_id INTEGER NOT NULL REFERENCES package_versions(id) ON DELETE CASCADE,
	target_id INTEGER NOT NULL REFERENCES targets(id),
	min_version_id INTEGER REFERENCES target_versions(id),
	max_version_id INTEGER REFERENCES target_versions(id)
);

CREATE TABLE IF NOT EXISTS targets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	website_url TEXT NOT NULL DEFAULT '',
	icon TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT 1,
	is_deprecated BOOLEAN NOT NULL DEFAULT 0,
	is_pinned BOOLEAN NOT NULL DEFAULT 0,
	date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	date_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	uuid4 TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS target_versions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id INTEGER NOT NULL REFERENCES targets(id) ON DELETE CASCADE,
	version_number TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	uuid4 TEXT NOT NULL UNIQUE,
	UNIQUE (target_id, version_number)
);

CREATE TABLE IF NOT EXISTS download_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id INTEGER NOT NULL REFERENCES package_versions(id) ON DELETE CASCADE,
	source_ip TEXT NOT NULL,
	total_downloads INTEGER NOT NULL DEFAULT 1,
	last_download TIMESTAMP NOT NULL,
	UNIQUE (version_id, source_ip)
);

CREATE TABLE IF NOT EXISTS webhooks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	url TEXT NOT NULL,
	webhook_type TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_package_versions_package ON package_versions(package_id);
CREATE INDEX IF NOT EXISTS idx_package_dependencies_target ON package_dependencies(depends_on_version_id);
CREATE INDEX IF NOT EXISTS idx_compat_version ON package_compatibilities(package_version_id);
CREATE INDEX IF NOT EXISTS idx_target_versions_target ON target_versions(target_id);
`
