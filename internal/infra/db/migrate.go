package db

import (
	"database/sql"
)

// MigrateUp creates the schema. The unique constraints on articles.url_hash,
// articles.normalized_title, monitored_entities.normalized_name and the
// article_entities primary key are load-bearing: they are the true arbiter
// of duplicate detection under concurrent ingestion and resolution runs.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id                       SERIAL PRIMARY KEY,
    source                   TEXT NOT NULL,
    url                      TEXT NOT NULL,
    url_hash                 TEXT NOT NULL UNIQUE,
    title                    TEXT NOT NULL,
    normalized_title         TEXT NOT NULL UNIQUE,
    content                  TEXT,
    normalized_content       TEXT,
    snippet                  TEXT,
    published_at             TIMESTAMPTZ,
    source_domain            TEXT,
    matched_keywords         TEXT[] NOT NULL DEFAULT '{}',
    relevant                 BOOLEAN NOT NULL DEFAULT FALSE,
    financial_decline        BOOLEAN NOT NULL DEFAULT FALSE,
    fraud                    BOOLEAN NOT NULL DEFAULT FALSE,
    misstated_financials     BOOLEAN NOT NULL DEFAULT FALSE,
    shareholder_issues       BOOLEAN NOT NULL DEFAULT FALSE,
    director_duties          BOOLEAN NOT NULL DEFAULT FALSE,
    regulatory_investigation BOOLEAN NOT NULL DEFAULT FALSE,
    confidence               DOUBLE PRECISION,
    status                   TEXT NOT NULL DEFAULT 'pending',
    ingested_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
    resolved_at              TIMESTAMPTZ
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ingestion_runs (
    id              UUID PRIMARY KEY,
    source          TEXT NOT NULL,
    status          TEXT NOT NULL,
    triggered_by    TEXT NOT NULL,
    fetched         INTEGER NOT NULL DEFAULT 0,
    new_articles    INTEGER NOT NULL DEFAULT 0,
    duplicates      INTEGER NOT NULL DEFAULT 0,
    relevant        INTEGER NOT NULL DEFAULT 0,
    errors          TEXT[] NOT NULL DEFAULT '{}',
    started_at      TIMESTAMPTZ NOT NULL,
    finished_at     TIMESTAMPTZ,
    lookback_days   INTEGER NOT NULL DEFAULT 0,
    quota_remaining INTEGER
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS monitored_entities (
    id              SERIAL PRIMARY KEY,
    name            TEXT NOT NULL,
    normalized_name TEXT NOT NULL UNIQUE,
    entity_type     TEXT NOT NULL,
    aliases         TEXT[] NOT NULL DEFAULT '{}',
    first_seen_at   TIMESTAMPTZ NOT NULL,
    last_seen_at    TIMESTAMPTZ NOT NULL,
    mention_count   INTEGER NOT NULL DEFAULT 0
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS article_entities (
    article_id    INTEGER NOT NULL REFERENCES articles(id),
    entity_id     INTEGER NOT NULL REFERENCES monitored_entities(id),
    confidence    DOUBLE PRECISION NOT NULL DEFAULT 0,
    mention_count INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (article_id, entity_id)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS app_settings (
    id                    INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    newsapi_enabled       BOOLEAN NOT NULL DEFAULT TRUE,
    newsapi_request_count INTEGER NOT NULL DEFAULT 0,
    newsapi_daily_limit   INTEGER NOT NULL DEFAULT 100,
    period_start          DATE NOT NULL DEFAULT CURRENT_DATE,
    keywords              TEXT[] NOT NULL DEFAULT '{"Cayman Islands","CIMA","Cayman","Grand Court"}'
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS review_queue (
    id         SERIAL PRIMARY KEY,
    item_type  TEXT NOT NULL,
    item_ref   TEXT NOT NULL,
    reason     TEXT NOT NULL,
    priority   TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_relevant ON articles(relevant) WHERE relevant = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_articles_unresolved ON articles(ingested_at) WHERE resolved_at IS NULL AND relevant = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON ingestion_runs(started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_source ON ingestion_runs(source)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_mentions ON monitored_entities(mention_count DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_article_entities_entity ON article_entities(entity_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Seed the singleton settings row; reruns are a no-op.
	if _, err := db.Exec(`INSERT INTO app_settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
		return err
	}

	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS review_queue`,
		`DROP TABLE IF EXISTS app_settings`,
		`DROP TABLE IF EXISTS article_entities`,
		`DROP TABLE IF EXISTS monitored_entities`,
		`DROP TABLE IF EXISTS ingestion_runs`,
		`DROP TABLE IF EXISTS articles`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
