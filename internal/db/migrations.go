package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER  PRIMARY KEY AUTOINCREMENT,
		first_name TEXT     NOT NULL,
		last_name  TEXT     NOT NULL DEFAULT '',
		username   TEXT     NOT NULL,
		email      TEXT     NOT NULL UNIQUE,
		password   TEXT     NOT NULL,
		phone      TEXT     NOT NULL DEFAULT '',
		avatar     TEXT     NOT NULL DEFAULT 'https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_1280.png',
		role       TEXT     NOT NULL DEFAULT 'USER',
		is_active  INTEGER  NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id            INTEGER  PRIMARY KEY AUTOINCREMENT,
		name          TEXT     NOT NULL,
		description   TEXT     NOT NULL,
		address       TEXT     NOT NULL,
		city          TEXT,
		state         TEXT,
		zip_code      TEXT,
		price         REAL     NOT NULL,
		bedrooms      INTEGER,
		bathrooms     INTEGER,
		square_feet   INTEGER,
		furnished     INTEGER,
		parking       INTEGER,
		amenities     TEXT     NOT NULL DEFAULT '',
		status        TEXT     NOT NULL DEFAULT 'ACTIVE',
		listing_type  TEXT     NOT NULL DEFAULT 'SALE',
		property_type TEXT     NOT NULL DEFAULT 'HOUSE',
		user_id       INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS listing_images (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		listing_id INTEGER NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL DEFAULT 0,
		url        TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id          INTEGER  PRIMARY KEY AUTOINCREMENT,
		sender_id   INTEGER  REFERENCES users(id) ON DELETE SET NULL,
		receiver_id INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		property_id INTEGER,
		subject     TEXT     NOT NULL DEFAULT '',
		content     TEXT     NOT NULL,
		is_read     INTEGER  NOT NULL DEFAULT 0,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id                   INTEGER  PRIMARY KEY AUTOINCREMENT,
		creator_id           INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		participant_id       INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title                TEXT     NOT NULL,
		description          TEXT     NOT NULL DEFAULT '',
		meeting_time         DATETIME NOT NULL,
		duration_minutes     INTEGER  NOT NULL DEFAULT 30,
		location             TEXT     NOT NULL DEFAULT '',
		meeting_link         TEXT     NOT NULL DEFAULT '',
		property_id          INTEGER  NOT NULL,
		message_id           INTEGER,
		status               TEXT     NOT NULL DEFAULT 'PENDING',
		creator_notified     INTEGER  NOT NULL DEFAULT 0,
		participant_notified INTEGER  NOT NULL DEFAULT 0,
		created_at           DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at           DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		id         INTEGER  PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		listing_id INTEGER  NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, listing_id)
	)`,
	`CREATE TABLE IF NOT EXISTS passkey_credentials (
		id              TEXT     PRIMARY KEY,
		user_id         INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name            TEXT     NOT NULL DEFAULT '',
		credential_json TEXT     NOT NULL,
		created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_user ON listings(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, is_read)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_time ON meetings(meeting_time)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
