package data

// Statements applied at boot to bring the database to
// the expected shape. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS agents (
		id text PRIMARY KEY,
		data jsonb NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS planets (
		id text PRIMARY KEY,
		data jsonb NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fleets (
		id text PRIMARY KEY,
		data jsonb NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS debris_fields (
		id text PRIMARY KEY,
		data jsonb NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS systems (
		id text PRIMARY KEY,
		data jsonb NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS globals (
		key text PRIMARY KEY,
		value text NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS battle_reports (
		id text PRIMARY KEY,
		at timestamp with time zone NOT NULL,
		attacker text NOT NULL,
		defender text NOT NULL,
		data jsonb NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS battle_reports_attacker ON battle_reports (attacker, at DESC)`,
	`CREATE INDEX IF NOT EXISTS battle_reports_defender ON battle_reports (defender, at DESC)`,

	`CREATE TABLE IF NOT EXISTS fleet_reports (
		id text PRIMARY KEY,
		at timestamp with time zone NOT NULL,
		owner text NOT NULL,
		data jsonb NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS fleet_reports_owner ON fleet_reports (owner, at DESC)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id text PRIMARY KEY,
		at timestamp with time zone NOT NULL,
		recipient text NOT NULL,
		data jsonb NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS messages_recipient ON messages (recipient, at DESC)`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id text PRIMARY KEY,
		at timestamp with time zone NOT NULL,
		author text NOT NULL,
		body text NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS chat_messages_at ON chat_messages (at DESC)`,

	`CREATE TABLE IF NOT EXISTS score_history (
		at timestamp with time zone NOT NULL,
		agent text NOT NULL,
		score double precision NOT NULL,
		planets integer NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS score_history_agent ON score_history (agent, at DESC)`,
}
