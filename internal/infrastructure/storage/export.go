package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"newsolvr/internal/domain"
)

// exportColumns is the full column list in table order.
func exportColumns() []string {
	columns := []string{"uid", "title", "content", "link", "published_date", "problem_summary", "problem_statement"}
	columns = append(columns, domain.SubscoreColumns...)
	return append(columns, "problem_size", "industry", "original_score", "total_score")
}

// ExportCSV writes every row to w as CSV, ordered by uid, and returns the
// row count. Null values export as empty strings.
func (s *SQLiteStore) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	columns := exportColumns()

	query := "SELECT " + strings.Join(columns, ", ") + " FROM articles ORDER BY uid"

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("query export: %w", err)
	}
	defer rows.Close()

	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	count := 0
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return count, fmt.Errorf("scan export row: %w", err)
		}

		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = v.String
		}
		if err := writer.Write(record); err != nil {
			return count, fmt.Errorf("write row: %w", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("rows iteration: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return count, fmt.Errorf("flush csv: %w", err)
	}
	return count, nil
}
