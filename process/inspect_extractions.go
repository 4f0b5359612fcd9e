package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// RunInspectExtractions connects to Postgres using dsn and prints summary
// statistics over persisted extraction rows.
func RunInspectExtractions(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	var total, mrzValid int64
	var avgConf sql.NullFloat64
	err = db.QueryRow(`
		SELECT
		  count(*),
		  count(*) FILTER (WHERE mrz_valid),
		  avg(confidence)
		FROM extractions;
	`).Scan(&total, &mrzValid, &avgConf)
	if err != nil {
		return fmt.Errorf("query totals: %w", err)
	}

	fmt.Printf("Extractions: total=%d mrz_valid=%d", total, mrzValid)
	if total > 0 {
		fmt.Printf(" valid_ratio=%.2f", float64(mrzValid)/float64(total))
	}
	if avgConf.Valid {
		fmt.Printf(" avg_confidence=%.1f", avgConf.Float64)
	}
	fmt.Println()

	rows, err := db.Query(`
		SELECT nationality, count(*), avg(confidence)
		FROM extractions
		WHERE nationality <> ''
		GROUP BY nationality
		ORDER BY count(*) DESC
		LIMIT 20;
	`)
	if err != nil {
		return fmt.Errorf("query by nationality: %w", err)
	}
	defer rows.Close()

	fmt.Println("By nationality:")
	for rows.Next() {
		var nat string
		var n int64
		var conf sql.NullFloat64
		if err := rows.Scan(&nat, &n, &conf); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		fmt.Printf("- %s: count=%d avg_confidence=%.1f\n", nat, n, conf.Float64)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows err: %w", err)
	}
	return nil
}
