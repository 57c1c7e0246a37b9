package repository

import (
	"strings"
	"unicode"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// dialect captures the SQL differences between the supported drivers.
type dialect struct {
	builder    squirrel.StatementBuilderType
	titleMatch func(terms []string) squirrel.Sqlizer
}

func dialectOf(db *sqlx.DB) dialect {
	if db.DriverName() == "pgx" {
		return dialect{
			builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
			titleMatch: func(terms []string) squirrel.Sqlizer {
				return squirrel.Expr("to_tsvector('simple', title) @@ to_tsquery('simple', ?)", strings.Join(terms, " | "))
			},
		}
	}
	return dialect{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		titleMatch: func(terms []string) squirrel.Sqlizer {
			quoted := make([]string, len(terms))
			for i, t := range terms {
				quoted[i] = `"` + t + `"`
			}
			return squirrel.Expr("id IN (SELECT task_id FROM tasks_fts WHERE title MATCH ?)", strings.Join(quoted, " OR "))
		},
	}
}

// searchTerms splits a free-text query into alphanumeric words. Any word
// matching is enough for a task to be returned.
func searchTerms(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
