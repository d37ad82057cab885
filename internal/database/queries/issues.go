package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const issueColumns = `id, request_id, user_id, book_id, status, issue_date, due_date, return_date, issued_by, created_at, updated_at`

func scanIssue(row interface {
	Scan(dest ...interface{}) error
}) (BookIssue, error) {
	var i BookIssue
	err := row.Scan(
		&i.ID, &i.RequestID, &i.UserID, &i.BookID, &i.Status, &i.IssueDate,
		&i.DueDate, &i.ReturnDate, &i.IssuedBy, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

const createIssue = `
INSERT INTO book_issues (request_id, user_id, book_id, status, issue_date, due_date, issued_by)
VALUES ($1, $2, $3, 'issued', $4, $5, $6)
RETURNING ` + issueColumns

type CreateIssueParams struct {
	RequestID pgtype.Int4
	UserID    int32
	BookID    int32
	IssueDate pgtype.Timestamp
	DueDate   pgtype.Timestamp
	IssuedBy  pgtype.Int4
}

func (q *Queries) CreateIssue(ctx context.Context, arg CreateIssueParams) (BookIssue, error) {
	row := q.db.QueryRow(ctx, createIssue,
		arg.RequestID, arg.UserID, arg.BookID, arg.IssueDate, arg.DueDate, arg.IssuedBy)
	return scanIssue(row)
}

const getIssueByID = `
SELECT ` + issueColumns + ` FROM book_issues WHERE id = $1`

func (q *Queries) GetIssueByID(ctx context.Context, id int32) (BookIssue, error) {
	return scanIssue(q.db.QueryRow(ctx, getIssueByID, id))
}

// returnIssue closes an open issue; the status guard means a double return
// surfaces as no row rather than rewriting return_date.
const returnIssue = `
UPDATE book_issues
SET status = 'returned', return_date = $2, updated_at = now()
WHERE id = $1 AND status IN ('issued', 'overdue')
RETURNING ` + issueColumns

type ReturnIssueParams struct {
	ID         int32
	ReturnDate pgtype.Timestamp
}

func (q *Queries) ReturnIssue(ctx context.Context, arg ReturnIssueParams) (BookIssue, error) {
	return scanIssue(q.db.QueryRow(ctx, returnIssue, arg.ID, arg.ReturnDate))
}

// markIssueOverdue flips issued to overdue; already-overdue and returned
// issues fall through the guard, which keeps the sweep idempotent.
const markIssueOverdue = `
UPDATE book_issues
SET status = 'overdue', updated_at = now()
WHERE id = $1 AND status = 'issued'
RETURNING ` + issueColumns

func (q *Queries) MarkIssueOverdue(ctx context.Context, id int32) (BookIssue, error) {
	return scanIssue(q.db.QueryRow(ctx, markIssueOverdue, id))
}

const listIssues = `
SELECT i.id, i.request_id, i.user_id, i.book_id, i.status, i.issue_date,
       i.due_date, i.return_date, i.issued_by, i.created_at, i.updated_at,
       b.title, b.author, u.username
FROM book_issues i
JOIN books b ON b.id = i.book_id
JOIN users u ON u.id = i.user_id
WHERE ($1 = '' OR i.status = $1)
ORDER BY i.issue_date DESC
LIMIT $2 OFFSET $3`

type ListIssuesParams struct {
	Status string
	Limit  int32
	Offset int32
}

type ListIssuesRow struct {
	BookIssue
	Title    string
	Author   string
	Username string
}

func (q *Queries) ListIssues(ctx context.Context, arg ListIssuesParams) ([]ListIssuesRow, error) {
	rows, err := q.db.Query(ctx, listIssues, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ListIssuesRow
	for rows.Next() {
		var r ListIssuesRow
		err := rows.Scan(
			&r.ID, &r.RequestID, &r.UserID, &r.BookID, &r.Status, &r.IssueDate,
			&r.DueDate, &r.ReturnDate, &r.IssuedBy, &r.CreatedAt, &r.UpdatedAt,
			&r.Title, &r.Author, &r.Username,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

const listIssuesByUser = `
SELECT i.id, i.request_id, i.user_id, i.book_id, i.status, i.issue_date,
       i.due_date, i.return_date, i.issued_by, i.created_at, i.updated_at,
       b.title, b.author
FROM book_issues i
JOIN books b ON b.id = i.book_id
WHERE i.user_id = $1
ORDER BY i.issue_date DESC
LIMIT $2 OFFSET $3`

type ListIssuesByUserParams struct {
	UserID int32
	Limit  int32
	Offset int32
}

type ListIssuesByUserRow struct {
	BookIssue
	Title  string
	Author string
}

func (q *Queries) ListIssuesByUser(ctx context.Context, arg ListIssuesByUserParams) ([]ListIssuesByUserRow, error) {
	rows, err := q.db.Query(ctx, listIssuesByUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ListIssuesByUserRow
	for rows.Next() {
		var r ListIssuesByUserRow
		err := rows.Scan(
			&r.ID, &r.RequestID, &r.UserID, &r.BookID, &r.Status, &r.IssueDate,
			&r.DueDate, &r.ReturnDate, &r.IssuedBy, &r.CreatedAt, &r.UpdatedAt,
			&r.Title, &r.Author,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// listOpenIssuesPastDue feeds the fine sweep: everything still out with a
// due date behind the given cutoff, returned issues excluded by status.
const listOpenIssuesPastDue = `
SELECT ` + issueColumns + ` FROM book_issues
WHERE status IN ('issued', 'overdue') AND due_date < $1
ORDER BY due_date`

func (q *Queries) ListOpenIssuesPastDue(ctx context.Context, cutoff pgtype.Timestamp) ([]BookIssue, error) {
	rows, err := q.db.Query(ctx, listOpenIssuesPastDue, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []BookIssue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

const countIssues = `
SELECT COUNT(*) FROM book_issues WHERE ($1 = '' OR status = $1)`

func (q *Queries) CountIssues(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countIssues, status).Scan(&count)
	return count, err
}
