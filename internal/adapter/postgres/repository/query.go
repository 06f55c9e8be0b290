package repository

import (
	"fmt"
	"strings"

	"patient-record-service/internal/core/domain"
)

// sortColumns is the allow-list mapping from API sort fields to columns.
// Anything outside it silently falls back to created_at, so user input is
// never interpolated into the ORDER BY clause.
var sortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"birthDate": "birth_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

const (
	defaultSortColumn = "created_at"
	defaultLimit      = 10
	maxLimit          = 100
)

// ageExpr computes the age in whole years from birth_date at query time.
const ageExpr = "date_part('year', age(CURRENT_DATE, birth_date))"

// likeEscaper neutralizes LIKE metacharacters so a search for a literal "%"
// or "_" matches the character, not everything.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func sortClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = defaultSortColumn
	}
	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	return column + " " + order
}

// buildListFilter turns the present filters into a conjunctive WHERE clause
// with positional placeholders. All filters are ANDed; absent ones add
// nothing. Returns an empty clause when no filter is present.
func buildListFilter(opts domain.ListPatientsOptions) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if opts.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(opts.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", n, n))
	}
	if opts.MinAge != nil {
		args = append(args, *opts.MinAge)
		conds = append(conds, fmt.Sprintf("%s >= $%d", ageExpr, len(args)))
	}
	if opts.MaxAge != nil {
		args = append(args, *opts.MaxAge)
		conds = append(conds, fmt.Sprintf("%s <= $%d", ageExpr, len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// normalizePage clamps page and limit into their valid ranges.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
