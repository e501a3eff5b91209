package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

const entityColumns = `id, name, normalized_name, entity_type, aliases, first_seen_at, last_seen_at, mention_count`

type EntityRepo struct {
	db DB
}

func NewEntityRepo(db DB) repository.EntityRepository {
	return &EntityRepo{db: db}
}

func scanEntity(s scanner) (*entity.MonitoredEntity, error) {
	var (
		e       entity.MonitoredEntity
		aliases pq.StringArray
	)
	err := s.Scan(&e.ID, &e.Name, &e.NormalizedName, &e.EntityType, &aliases,
		&e.FirstSeenAt, &e.LastSeenAt, &e.MentionCount)
	if err != nil {
		return nil, err
	}
	e.Aliases = []string(aliases)
	return &e, nil
}

func (repo *EntityRepo) GetByNormalizedName(ctx context.Context, name string) (*entity.MonitoredEntity, error) {
	query := fmt.Sprintf(`SELECT %s FROM monitored_entities WHERE normalized_name = $1 LIMIT 1`, entityColumns)
	e, err := scanEntity(repo.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByNormalizedName: %w", err)
	}
	return e, nil
}

// Insert creates a new entity row. A unique violation on normalized_name
// means a concurrent resolver won the creation race; it is reported as
// entity.ErrDuplicate so the caller can re-read and use the winner.
func (repo *EntityRepo) Insert(ctx context.Context, e *entity.MonitoredEntity) error {
	const query = `
INSERT INTO monitored_entities (name, normalized_name, entity_type, aliases, first_seen_at, last_seen_at, mention_count)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	err := repo.db.QueryRowContext(ctx, query,
		e.Name, e.NormalizedName, e.EntityType, pq.Array(e.Aliases),
		e.FirstSeenAt, e.LastSeenAt, e.MentionCount,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Insert: %w", entity.ErrDuplicate)
		}
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (repo *EntityRepo) RecordMention(ctx context.Context, entityID int64, seenAt time.Time) error {
	const query = `
UPDATE monitored_entities
SET mention_count = mention_count + 1, last_seen_at = GREATEST(last_seen_at, $2)
WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, entityID, seenAt); err != nil {
		return fmt.Errorf("RecordMention: %w", err)
	}
	return nil
}

func (repo *EntityRepo) TouchLastSeen(ctx context.Context, entityID int64, seenAt time.Time) error {
	const query = `
UPDATE monitored_entities
SET last_seen_at = GREATEST(last_seen_at, $2)
WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, entityID, seenAt); err != nil {
		return fmt.Errorf("TouchLastSeen: %w", err)
	}
	return nil
}

func (repo *EntityRepo) Get(ctx context.Context, id int64) (*entity.MonitoredEntity, error) {
	query := fmt.Sprintf(`SELECT %s FROM monitored_entities WHERE id = $1 LIMIT 1`, entityColumns)
	e, err := scanEntity(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return e, nil
}

func (repo *EntityRepo) ListByMentions(ctx context.Context, offset, limit int) ([]*entity.MonitoredEntity, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM monitored_entities
ORDER BY mention_count DESC, last_seen_at DESC
LIMIT $1 OFFSET $2`, entityColumns)

	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByMentions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entities := make([]*entity.MonitoredEntity, 0, limit)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByMentions: Scan: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

func (repo *EntityRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM monitored_entities`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// InsertLink creates an article-entity link. When the pair already exists
// (the same article reprocessed, or a repeat mention in one article) the
// existing link's mention_count is bumped and created=false is returned so
// the caller knows not to advance the entity's distinct-article counter.
func (repo *EntityRepo) InsertLink(ctx context.Context, link *entity.ArticleEntityLink) (bool, error) {
	const insertQuery = `
INSERT INTO article_entities (article_id, entity_id, confidence, mention_count)
VALUES ($1, $2, $3, $4)
ON CONFLICT (article_id, entity_id) DO NOTHING`

	res, err := repo.db.ExecContext(ctx, insertQuery,
		link.ArticleID, link.EntityID, link.Confidence, link.MentionCount)
	if err != nil {
		return false, fmt.Errorf("InsertLink: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("InsertLink: RowsAffected: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	const updateQuery = `
UPDATE article_entities
SET mention_count = mention_count + $3, confidence = GREATEST(confidence, $4)
WHERE article_id = $1 AND entity_id = $2`
	if _, err := repo.db.ExecContext(ctx, updateQuery,
		link.ArticleID, link.EntityID, link.MentionCount, link.Confidence); err != nil {
		return false, fmt.Errorf("InsertLink: update existing: %w", err)
	}
	return false, nil
}

func (repo *EntityRepo) ListLinkedArticles(ctx context.Context, entityID int64, limit int) ([]*entity.Article, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM articles a
INNER JOIN article_entities ae ON ae.article_id = a.id
WHERE ae.entity_id = $1
ORDER BY a.ingested_at DESC
LIMIT $2`, prefixColumns("a", articleColumns))

	rows, err := repo.db.QueryContext(ctx, query, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListLinkedArticles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListLinkedArticles: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}
