package db

import (
	"database/sql"
	"fmt"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations list all database migrations in order
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create household and meal plan schema",
		SQL: `
			-- Households and their roster
			CREATE SEQUENCE IF NOT EXISTS households_id_seq;
			CREATE TABLE IF NOT EXISTS households (
				id INTEGER PRIMARY KEY DEFAULT nextval('households_id_seq'),
				name TEXT NOT NULL,
				eco_friendly BOOLEAN NOT NULL DEFAULT false,
				use_leftovers BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE SEQUENCE IF NOT EXISTS household_members_id_seq;
			CREATE TABLE IF NOT EXISTS household_members (
				id INTEGER PRIMARY KEY DEFAULT nextval('household_members_id_seq'),
				household_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				role TEXT,
				allergens JSON,
				likes JSON,
				eats_breakfast BOOLEAN NOT NULL DEFAULT true,
				eats_lunch BOOLEAN NOT NULL DEFAULT true,
				eats_dinner BOOLEAN NOT NULL DEFAULT true,
				meal_schedule JSON,
				FOREIGN KEY (household_id) REFERENCES households(id)
			);
			CREATE INDEX IF NOT EXISTS idx_members_household ON household_members(household_id);

			CREATE SEQUENCE IF NOT EXISTS kitchen_tools_id_seq;
			CREATE TABLE IF NOT EXISTS kitchen_tools (
				id INTEGER PRIMARY KEY DEFAULT nextval('kitchen_tools_id_seq'),
				household_id INTEGER NOT NULL,
				label TEXT NOT NULL,
				category TEXT,
				quantity INTEGER NOT NULL DEFAULT 1,
				FOREIGN KEY (household_id) REFERENCES households(id)
			);
			CREATE INDEX IF NOT EXISTS idx_tools_household ON kitchen_tools(household_id);

			CREATE SEQUENCE IF NOT EXISTS pantry_items_id_seq;
			CREATE TABLE IF NOT EXISTS pantry_items (
				id INTEGER PRIMARY KEY DEFAULT nextval('pantry_items_id_seq'),
				household_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				quantity DOUBLE NOT NULL DEFAULT 0,
				unit TEXT,
				days_until_expiry INTEGER,
				FOREIGN KEY (household_id) REFERENCES households(id)
			);
			CREATE INDEX IF NOT EXISTS idx_pantry_household ON pantry_items(household_id);

			-- Saved weekly plans; one plan per household and week
			CREATE SEQUENCE IF NOT EXISTS meal_plans_id_seq;
			CREATE TABLE IF NOT EXISTS meal_plans (
				id INTEGER PRIMARY KEY DEFAULT nextval('meal_plans_id_seq'),
				household_id INTEGER NOT NULL,
				week_start DATE NOT NULL,
				timeline JSON,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (household_id) REFERENCES households(id)
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_plans_household_week ON meal_plans(household_id, week_start);

			CREATE SEQUENCE IF NOT EXISTS plan_entries_id_seq;
			CREATE TABLE IF NOT EXISTS plan_entries (
				id INTEGER PRIMARY KEY DEFAULT nextval('plan_entries_id_seq'),
				plan_id INTEGER NOT NULL,
				day TEXT NOT NULL,
				meal TEXT NOT NULL,
				title TEXT NOT NULL,
				payload JSON NOT NULL,
				attendee_ids JSON,
				position INTEGER NOT NULL,
				FOREIGN KEY (plan_id) REFERENCES meal_plans(id)
			);
			CREATE INDEX IF NOT EXISTS idx_entries_plan ON plan_entries(plan_id);

			-- Create migrations table
			CREATE TABLE IF NOT EXISTS migrations (
				version INTEGER PRIMARY KEY,
				description TEXT NOT NULL,
				applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version:     2,
		Description: "Add background planning jobs and their event log",
		SQL: `
			CREATE TABLE IF NOT EXISTS planning_jobs (
				id TEXT PRIMARY KEY,
				household_id INTEGER NOT NULL,
				week_start DATE NOT NULL,
				days JSON,
				status TEXT NOT NULL CHECK (status IN ('pending', 'running', 'completed', 'failed', 'cancelled')),
				error TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				finished_at TIMESTAMP,
				FOREIGN KEY (household_id) REFERENCES households(id)
			);
			CREATE INDEX IF NOT EXISTS idx_jobs_household ON planning_jobs(household_id);

			-- Event ids are the per-stream cursor for resumable streaming
			CREATE SEQUENCE IF NOT EXISTS job_events_id_seq;
			CREATE TABLE IF NOT EXISTS planning_job_events (
				id INTEGER PRIMARY KEY DEFAULT nextval('job_events_id_seq'),
				job_id TEXT NOT NULL,
				day TEXT,
				stage TEXT NOT NULL,
				agent TEXT,
				origin TEXT NOT NULL DEFAULT 'primary',
				payload JSON,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (job_id) REFERENCES planning_jobs(id)
			);
			CREATE INDEX IF NOT EXISTS idx_job_events_job ON planning_job_events(job_id);
		`,
	},
	{
		Version:     3,
		Description: "Carry planning options on jobs and saved plans",
		SQL: `
			ALTER TABLE planning_jobs ADD COLUMN eco_friendly BOOLEAN NOT NULL DEFAULT false;
			ALTER TABLE planning_jobs ADD COLUMN use_leftovers BOOLEAN NOT NULL DEFAULT false;
			ALTER TABLE planning_jobs ADD COLUMN notes TEXT;

			ALTER TABLE meal_plans ADD COLUMN session_id TEXT;
			ALTER TABLE meal_plans ADD COLUMN eco_friendly BOOLEAN NOT NULL DEFAULT false;
			ALTER TABLE meal_plans ADD COLUMN use_leftovers BOOLEAN NOT NULL DEFAULT false;
			ALTER TABLE meal_plans ADD COLUMN notes TEXT;
		`,
	},
}

// Migrate applies any pending migrations
func (db *DB) Migrate() error {
	// First, ensure migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return serr.Wrap(err, "failed to create migrations table")
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return serr.Wrap(err, "failed to get current migration version")
	}

	logger.Info("Current migration version", "version", currentVersion)

	// Apply pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		logger.Info("Applying migration", "version", migration.Version, "description", migration.Description)

		err := db.Transaction(func(tx *sql.Tx) error {
			if _, err := tx.Exec(migration.SQL); err != nil {
				return serr.Wrap(err, fmt.Sprintf("failed to execute migration %d", migration.Version))
			}

			_, err := tx.Exec(
				"INSERT INTO migrations (version, description) VALUES (?, ?)",
				migration.Version, migration.Description,
			)
			if err != nil {
				return serr.Wrap(err, "failed to record migration")
			}

			return nil
		})

		if err != nil {
			return err
		}

		logger.Info("Migration applied successfully", "version", migration.Version)
	}

	return nil
}
