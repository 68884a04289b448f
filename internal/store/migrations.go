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

CREATE TABLE IF NOT EXISTS editions (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	state       TEXT NOT NULL CHECK(length(state) = 2),
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS email_aliases (
	id         TEXT PRIMARY KEY,
	edition_id TEXT NOT NULL REFERENCES editions(id) ON DELETE CASCADE,
	address    TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS emails (
	id             TEXT PRIMARY KEY,
	edition_id     TEXT REFERENCES editions(id) ON DELETE CASCADE,
	email_alias_id TEXT REFERENCES email_aliases(id) ON DELETE CASCADE,
	subject        TEXT NOT NULL DEFAULT '',
	from_name      TEXT NOT NULL DEFAULT '',
	from_email     TEXT NOT NULL DEFAULT '',
	to_emails      TEXT NOT NULL DEFAULT '',
	message_id     TEXT NOT NULL UNIQUE,
	received_at    DATETIME NOT NULL,
	body_text      TEXT NOT NULL DEFAULT '',
	body_html      TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'received'
		CHECK(status IN ('received', 'processed')),
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS announcements (
	id         TEXT PRIMARY KEY,
	edition_id TEXT NOT NULL REFERENCES editions(id) ON DELETE CASCADE,
	title      TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	edition_id  TEXT NOT NULL REFERENCES editions(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL,
	start_time  TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS email_announcements (
	email_id        TEXT NOT NULL REFERENCES emails(id),
	announcement_id TEXT NOT NULL REFERENCES announcements(id),
	PRIMARY KEY (email_id, announcement_id)
);

CREATE TABLE IF NOT EXISTS email_events (
	email_id TEXT NOT NULL REFERENCES emails(id),
	event_id TEXT NOT NULL REFERENCES events(id),
	PRIMARY KEY (email_id, event_id)
);

CREATE INDEX IF NOT EXISTS idx_email_aliases_address ON email_aliases(address);
CREATE INDEX IF NOT EXISTS idx_emails_edition_id ON emails(edition_id);
CREATE INDEX IF NOT EXISTS idx_announcements_edition_id ON announcements(edition_id);
CREATE INDEX IF NOT EXISTS idx_events_edition_id ON events(edition_id);
CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		// Deleting an email or an extracted record must take its join
		// rows with it; version 1 join tables lacked the cascade.
		version: 2,
		sql: `
CREATE TABLE email_announcements_new (
	email_id        TEXT NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
	announcement_id TEXT NOT NULL REFERENCES announcements(id) ON DELETE CASCADE,
	PRIMARY KEY (email_id, announcement_id)
);
INSERT INTO email_announcements_new SELECT * FROM email_announcements;
DROP TABLE email_announcements;
ALTER TABLE email_announcements_new RENAME TO email_announcements;

CREATE TABLE email_events_new (
	email_id TEXT NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
	event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	PRIMARY KEY (email_id, event_id)
);
INSERT INTO email_events_new SELECT * FROM email_events;
DROP TABLE email_events;
ALTER TABLE email_events_new RENAME TO email_events;

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
