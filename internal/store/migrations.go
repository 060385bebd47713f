package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table: one row per pipeline run.
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			site_id TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Brushes table: sticky brushes, tombstoned rather than deleted so
		// a restarted replica can replay its history.
		`CREATE TABLE IF NOT EXISTS brushes (
			id TEXT PRIMARY KEY,
			viz TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			radius REAL NOT NULL,
			kind TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			deleted_at DATETIME
		)`,

		// Settings table: application settings as key-value pairs.
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_brushes_viz ON brushes(viz)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
