// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// queryBuilder accumulates WHERE clauses and their arguments. Every "$?"
// in a clause becomes the positional parameter of the clause's argument,
// so one argument can be referenced more than once.
type queryBuilder struct {
	clauses []string
	args    []any
}

func (qb *queryBuilder) add(clause string, arg any) {
	qb.args = append(qb.args, arg)
	qb.clauses = append(qb.clauses, strings.ReplaceAll(clause, "$?", "$"+strconv.Itoa(len(qb.args))))
}

// where returns " WHERE a AND b", or "" when no clause was added.
func (qb *queryBuilder) where() string {
	if len(qb.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(qb.clauses, " AND ")
}

// paginate appends LIMIT and OFFSET when they are positive.
func (qb *queryBuilder) paginate(query string, limit, offset int) string {
	if limit > 0 {
		qb.args = append(qb.args, limit)
		query += " LIMIT $" + strconv.Itoa(len(qb.args))
	}
	if offset > 0 {
		qb.args = append(qb.args, offset)
		query += " OFFSET $" + strconv.Itoa(len(qb.args))
	}
	return query
}

// jsonb encodes v for a JSONB parameter.
func jsonb(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode jsonb: %w", err)
	}
	return string(b), nil
}

// likePattern escapes LIKE metacharacters and wraps s for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
