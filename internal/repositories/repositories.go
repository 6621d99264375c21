package repositories

import (
	"database/sql"
	"fmt"
)

// sequenced lists the tables that own a "<table>_sequence" counter row.
var sequenced = map[string]bool{"songs": true, "conversions": true}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence bumps the counter for table and returns the new value, the number shown as "#42" in listings.
// The increment and read are one statement, so concurrent imports never share a number.
func NextSequence(q rowQuerier, table string) (int, error) {
	if !sequenced[table] {
		return 0, fmt.Errorf("no sequence counter for table %q", table)
	}

	var n int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := q.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", table, err)
	}
	return n, nil
}
