// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT,
	status TEXT NOT NULL DEFAULT 'none',
	relationship_type TEXT,
	total_touchpoints INTEGER NOT NULL DEFAULT 0,
	last_contact_date DATETIME,
	next_follow_up DATETIME,
	revenue_amount INTEGER NOT NULL DEFAULT 0,
	is_demo INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_owner ON contacts(owner_id);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
CREATE INDEX IF NOT EXISTS idx_contacts_next_follow_up ON contacts(owner_id, next_follow_up);

CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('email', 'call', 'meeting', 'linkedin', 'social', 'mail', 'text', 'introduction', 'revenue', 'status_change')),
	title TEXT NOT NULL,
	description TEXT,
	response_received INTEGER NOT NULL DEFAULT 0,
	amount INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	completed_at DATETIME,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_activities_contact ON activities(contact_id);
CREATE INDEX IF NOT EXISTS idx_activities_owner ON activities(owner_id);
CREATE INDEX IF NOT EXISTS idx_activities_created ON activities(created_at DESC);

CREATE TABLE IF NOT EXISTS cadence_config (
	owner_id TEXT PRIMARY KEY,
	auto_followup_enabled INTEGER NOT NULL DEFAULT 1,
	rules TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
