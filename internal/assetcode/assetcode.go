// Package assetcode computes sequential human-readable asset codes of the
// form MAA-<BUILDING>-<DEPT>-<NNN>.
package assetcode

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Querier is the subset of database/sql needed by the allocator; *sql.DB,
// *sql.Tx and *sql.Conn all satisfy it. Callers that need the allocation
// and the dependent insert to be atomic must pass a transaction opened
// with BEGIN IMMEDIATE so concurrent creators are serialized by the store.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Normalize uppercases a building or department name and strips spaces for
// use inside a code.
func Normalize(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

// Format renders a code for the given pair and sequence number. Numbers are
// zero-padded to three digits and print wider past 999.
func Format(building, department string, n int) string {
	return fmt.Sprintf("MAA-%s-%s-%03d", Normalize(building), Normalize(department), n)
}

// SuffixNumber parses the numeric suffix after the final '-' of a code.
// Rows with unparsable suffixes contribute nothing to the scan (fail-open;
// a malformed code is silently skipped rather than aborting allocation).
func SuffixNumber(code string) (int, bool) {
	i := strings.LastIndex(code, "-")
	if i < 0 || i == len(code)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(code[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Next returns the next code for a (building, department) pair. Both the
// live and the archived tables contribute to the running maximum, so a
// deleted asset's number is never reissued. The first code for a pair ends
// in -001.
func Next(ctx context.Context, q Querier, building, department string) (string, error) {
	highest := 0
	for _, table := range []string{"assets", "archived_assets"} {
		rows, err := q.QueryContext(ctx,
			`SELECT asset_code FROM `+table+` WHERE building = ? AND department = ?`,
			building, department)
		if err != nil {
			return "", fmt.Errorf("scan %s codes: %w", table, err)
		}
		for rows.Next() {
			var code sql.NullString
			if err := rows.Scan(&code); err != nil {
				rows.Close()
				return "", err
			}
			if !code.Valid {
				continue
			}
			if n, ok := SuffixNumber(code.String); ok && n > highest {
				highest = n
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return "", err
		}
		rows.Close()
	}
	return Format(building, department, highest+1), nil
}
