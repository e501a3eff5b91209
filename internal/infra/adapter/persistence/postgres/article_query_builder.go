package postgres

import (
	"fmt"
	"strings"

	"github.com/marchebantum/caymanmyass-sub002/internal/repository"
)

// signalColumns whitelists the filterable signal column names. Filtering is
// done by column name, so anything not in this set is ignored rather than
// interpolated into SQL.
var signalColumns = map[string]bool{
	"financial_decline":        true,
	"fraud":                    true,
	"misstated_financials":     true,
	"shareholder_issues":       true,
	"director_duties":          true,
	"regulatory_investigation": true,
}

// ArticleQueryBuilder builds WHERE clauses for article listing in PostgreSQL.
// It is shared between COUNT and SELECT queries to eliminate duplication.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds the WHERE clause and arguments for the given
// filters. Returns an empty clause when no filters are set.
// PostgreSQL-specific: uses ILIKE for case-insensitive search and $N placeholders.
func (qb *ArticleQueryBuilder) BuildWhereClause(filters repository.ArticleFilters) (clause string, args []interface{}) {
	var conditions []string
	paramIndex := 1

	if filters.Source != nil {
		conditions = append(conditions, fmt.Sprintf("source = $%d", paramIndex))
		args = append(args, *filters.Source)
		paramIndex++
	}

	if filters.Relevant != nil {
		conditions = append(conditions, fmt.Sprintf("relevant = $%d", paramIndex))
		args = append(args, *filters.Relevant)
		paramIndex++
	}

	if filters.Signal != nil && signalColumns[*filters.Signal] {
		conditions = append(conditions, fmt.Sprintf("%s = TRUE", *filters.Signal))
	}

	if filters.Keyword != nil && *filters.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR snippet ILIKE $%d)", paramIndex, paramIndex))
		args = append(args, "%"+escapeILIKE(*filters.Keyword)+"%")
		paramIndex++
	}

	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("published_at >= $%d", paramIndex))
		args = append(args, *filters.From)
		paramIndex++
	}

	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("published_at <= $%d", paramIndex))
		args = append(args, *filters.To)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// escapeILIKE escapes the ILIKE pattern metacharacters in user input.
func escapeILIKE(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
