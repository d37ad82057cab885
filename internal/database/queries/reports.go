package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getInventorySummary = `
SELECT COUNT(*),
       COALESCE(SUM(total_copies), 0),
       COALESCE(SUM(available_copies), 0)
FROM books
WHERE is_active = true`

type GetInventorySummaryRow struct {
	TotalBooks      int64
	TotalCopies     int64
	AvailableCopies int64
}

func (q *Queries) GetInventorySummary(ctx context.Context) (GetInventorySummaryRow, error) {
	var r GetInventorySummaryRow
	err := q.db.QueryRow(ctx, getInventorySummary).Scan(
		&r.TotalBooks, &r.TotalCopies, &r.AvailableCopies)
	return r, err
}

const getFineTotalsByStatus = `
SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
FROM fines
GROUP BY status`

type GetFineTotalsByStatusRow struct {
	Status string
	Count  int64
	Total  pgtype.Numeric
}

func (q *Queries) GetFineTotalsByStatus(ctx context.Context) ([]GetFineTotalsByStatusRow, error) {
	rows, err := q.db.Query(ctx, getFineTotalsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GetFineTotalsByStatusRow
	for rows.Next() {
		var r GetFineTotalsByStatusRow
		if err := rows.Scan(&r.Status, &r.Count, &r.Total); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

const listOverdueIssuesReport = `
SELECT i.id, i.book_id, b.title, i.user_id, u.username, i.due_date
FROM book_issues i
JOIN books b ON b.id = i.book_id
JOIN users u ON u.id = i.user_id
WHERE i.status IN ('issued', 'overdue') AND i.due_date < $1
ORDER BY i.due_date`

type ListOverdueIssuesReportRow struct {
	IssueID  int32
	BookID   int32
	Title    string
	UserID   int32
	Username string
	DueDate  pgtype.Timestamp
}

func (q *Queries) ListOverdueIssuesReport(ctx context.Context, cutoff pgtype.Timestamp) ([]ListOverdueIssuesReportRow, error) {
	rows, err := q.db.Query(ctx, listOverdueIssuesReport, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ListOverdueIssuesReportRow
	for rows.Next() {
		var r ListOverdueIssuesReportRow
		if err := rows.Scan(&r.IssueID, &r.BookID, &r.Title, &r.UserID, &r.Username, &r.DueDate); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
