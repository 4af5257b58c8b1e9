package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tcua/price-index-service/internal/models"
)

// InsertQualityLog writes the per-run quality record. A rerun for the same
// date replaces the previous row so the log always reflects the last
// completed run.
func (db *DB) InsertQualityLog(q *models.QualityLogEntry) error {
	query := `
		INSERT INTO quality_log (date, records_fetched, records_classified, success_rate, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			records_fetched = EXCLUDED.records_fetched,
			records_classified = EXCLUDED.records_classified,
			success_rate = EXCLUDED.success_rate
		RETURNING quality_id
	`
	err := db.conn.QueryRow(query,
		q.Date, q.RecordsFetched, q.RecordsClassified, q.SuccessRate, time.Now(),
	).Scan(&q.ID)

	if err != nil {
		return fmt.Errorf("failed to insert quality log: %w", err)
	}
	return nil
}

// GetQualityLogByDate retrieves the quality record for one run date.
func (db *DB) GetQualityLogByDate(date time.Time) (*models.QualityLogEntry, error) {
	query := `
		SELECT quality_id, date, records_fetched, records_classified, success_rate, created_at
		FROM quality_log
		WHERE date = $1
	`
	var q models.QualityLogEntry
	err := db.conn.QueryRow(query, date).Scan(
		&q.ID, &q.Date, &q.RecordsFetched, &q.RecordsClassified, &q.SuccessRate, &q.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quality log not found for %s", date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quality log: %w", err)
	}
	return &q, nil
}

// GetQualityLog returns the most recent quality records, newest first.
func (db *DB) GetQualityLog(days int) ([]*models.QualityLogEntry, error) {
	query := `
		SELECT quality_id, date, records_fetched, records_classified, success_rate, created_at
		FROM quality_log
		ORDER BY date DESC
		LIMIT $1
	`
	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get quality log: %w", err)
	}
	defer rows.Close()

	var entries []*models.QualityLogEntry
	for rows.Next() {
		var q models.QualityLogEntry
		if err := rows.Scan(&q.ID, &q.Date, &q.RecordsFetched, &q.RecordsClassified, &q.SuccessRate, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quality log: %w", err)
		}
		entries = append(entries, &q)
	}
	return entries, rows.Err()
}
