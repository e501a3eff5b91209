package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

// articleColumns is the canonical select list shared by all article queries.
const articleColumns = `id, source, url, url_hash, title, normalized_title, content, normalized_content,
snippet, published_at, source_domain, matched_keywords, relevant,
financial_decline, fraud, misstated_financials, shareholder_issues, director_duties, regulatory_investigation,
confidence, status, ingested_at`

type ArticleRepo struct {
	db           DB
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type scanner interface {
	Scan(dest ...any) error
}

// prefixColumns rewrites a comma-separated column list with a table alias,
// for queries that join articles against another table.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func scanArticle(s scanner) (*entity.Article, error) {
	var (
		article     entity.Article
		publishedAt sql.NullTime
		confidence  sql.NullFloat64
		keywords    pq.StringArray
	)
	err := s.Scan(
		&article.ID, &article.Source, &article.URL, &article.URLHash,
		&article.Title, &article.NormalizedTitle,
		&article.Content, &article.NormalizedContent, &article.Snippet,
		&publishedAt, &article.SourceDomain, &keywords, &article.Relevant,
		&article.Signals.FinancialDecline, &article.Signals.Fraud,
		&article.Signals.MisstatedFinancials, &article.Signals.ShareholderIssues,
		&article.Signals.DirectorDuties, &article.Signals.RegulatoryInvestigation,
		&confidence, &article.Status, &article.IngestedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	if confidence.Valid {
		v := confidence.Float64
		article.Confidence = &v
	}
	article.MatchedKeywords = []string(keywords)
	return &article, nil
}

// Create inserts a new article. A unique violation on url_hash or
// normalized_title is reported as entity.ErrDuplicate: the constraint, not
// the in-process dedup check, is the true duplicate arbiter.
func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles (source, url, url_hash, title, normalized_title, content, normalized_content,
    snippet, published_at, source_domain, matched_keywords, relevant,
    financial_decline, fraud, misstated_financials, shareholder_issues, director_duties, regulatory_investigation,
    confidence, status, ingested_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
RETURNING id`

	var publishedAt any
	if article.PublishedAt != nil {
		publishedAt = *article.PublishedAt
	}
	var confidence any
	if article.Confidence != nil {
		confidence = *article.Confidence
	}

	err := repo.db.QueryRowContext(ctx, query,
		article.Source, article.URL, article.URLHash,
		article.Title, article.NormalizedTitle,
		article.Content, article.NormalizedContent, article.Snippet,
		publishedAt, article.SourceDomain, pq.Array(article.MatchedKeywords), article.Relevant,
		article.Signals.FinancialDecline, article.Signals.Fraud,
		article.Signals.MisstatedFinancials, article.Signals.ShareholderIssues,
		article.Signals.DirectorDuties, article.Signals.RegulatoryInvestigation,
		confidence, article.Status, article.IngestedAt,
	).Scan(&article.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", entity.ErrDuplicate)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE id = $1 LIMIT 1`, articleColumns)
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetByURLHash(ctx context.Context, hash string) (*entity.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE url_hash = $1 LIMIT 1`, articleColumns)
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, hash))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURLHash: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetByNormalizedTitle(ctx context.Context, title string) (*entity.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE normalized_title = $1 LIMIT 1`, articleColumns)
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, title))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByNormalizedTitle: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) ListPaginated(ctx context.Context, filters repository.ArticleFilters, offset, limit int) ([]*entity.Article, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(filters)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
SELECT %s
FROM articles
%s
ORDER BY ingested_at DESC
LIMIT $%d OFFSET $%d`, articleColumns, whereClause, len(args)-1, len(args))

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListPaginated: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListPaginated: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) Count(ctx context.Context, filters repository.ArticleFilters) (int64, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(filters)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM articles %s`, whereClause)

	var count int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// ListUnresolved returns relevant classified articles pending entity
// resolution, oldest first so the resolver drains the backlog in order.
func (repo *ArticleRepo) ListUnresolved(ctx context.Context, limit int) ([]*entity.Article, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM articles
WHERE resolved_at IS NULL AND relevant = TRUE AND status = 'classified'
ORDER BY ingested_at ASC
LIMIT $1`, articleColumns)

	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListUnresolved: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUnresolved: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) MarkResolved(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE articles SET resolved_at = $2 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("MarkResolved: %w", err)
	}
	return nil
}

// CountBySignal returns the per-signal article counts for the stats facade.
func (repo *ArticleRepo) CountBySignal(ctx context.Context) ([]repository.SignalCount, error) {
	const query = `
SELECT
    COUNT(*) FILTER (WHERE financial_decline),
    COUNT(*) FILTER (WHERE fraud),
    COUNT(*) FILTER (WHERE misstated_financials),
    COUNT(*) FILTER (WHERE shareholder_issues),
    COUNT(*) FILTER (WHERE director_duties),
    COUNT(*) FILTER (WHERE regulatory_investigation)
FROM articles
WHERE relevant = TRUE`

	var decline, fraud, misstated, shareholder, director, regulatory int64
	err := repo.db.QueryRowContext(ctx, query).
		Scan(&decline, &fraud, &misstated, &shareholder, &director, &regulatory)
	if err != nil {
		return nil, fmt.Errorf("CountBySignal: %w", err)
	}

	return []repository.SignalCount{
		{Signal: "financial_decline", Count: decline},
		{Signal: "fraud", Count: fraud},
		{Signal: "misstated_financials", Count: misstated},
		{Signal: "shareholder_issues", Count: shareholder},
		{Signal: "director_duties", Count: director},
		{Signal: "regulatory_investigation", Count: regulatory},
	}, nil
}
