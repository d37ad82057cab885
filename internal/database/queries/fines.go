package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const fineColumns = `id, issue_id, amount, status, method, waive_reason, resolved_by, resolved_at, created_at, updated_at`

func scanFine(row interface {
	Scan(dest ...interface{}) error
}) (Fine, error) {
	var f Fine
	err := row.Scan(
		&f.ID, &f.IssueID, &f.Amount, &f.Status, &f.Method, &f.WaiveReason,
		&f.ResolvedBy, &f.ResolvedAt, &f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

const createFine = `
INSERT INTO fines (issue_id, amount, status)
VALUES ($1, $2, 'pending')
RETURNING ` + fineColumns

type CreateFineParams struct {
	IssueID int32
	Amount  pgtype.Numeric
}

func (q *Queries) CreateFine(ctx context.Context, arg CreateFineParams) (Fine, error) {
	return scanFine(q.db.QueryRow(ctx, createFine, arg.IssueID, arg.Amount))
}

const getFineByID = `
SELECT ` + fineColumns + ` FROM fines WHERE id = $1`

func (q *Queries) GetFineByID(ctx context.Context, id int32) (Fine, error) {
	return scanFine(q.db.QueryRow(ctx, getFineByID, id))
}

const getFineWithOwner = `
SELECT f.id, f.issue_id, f.amount, f.status, f.method, f.waive_reason,
       f.resolved_by, f.resolved_at, f.created_at, f.updated_at,
       i.user_id
FROM fines f
JOIN book_issues i ON i.id = f.issue_id
WHERE f.id = $1`

type GetFineWithOwnerRow struct {
	Fine
	UserID int32
}

func (q *Queries) GetFineWithOwner(ctx context.Context, id int32) (GetFineWithOwnerRow, error) {
	var r GetFineWithOwnerRow
	err := q.db.QueryRow(ctx, getFineWithOwner, id).Scan(
		&r.ID, &r.IssueID, &r.Amount, &r.Status, &r.Method, &r.WaiveReason,
		&r.ResolvedBy, &r.ResolvedAt, &r.CreatedAt, &r.UpdatedAt,
		&r.UserID,
	)
	return r, err
}

const getPendingFineByIssue = `
SELECT ` + fineColumns + ` FROM fines WHERE issue_id = $1 AND status = 'pending'`

func (q *Queries) GetPendingFineByIssue(ctx context.Context, issueID int32) (Fine, error) {
	return scanFine(q.db.QueryRow(ctx, getPendingFineByIssue, issueID))
}

// updatePendingFineAmount only moves pending fines; resolved fines keep the
// amount they were settled at.
const updatePendingFineAmount = `
UPDATE fines
SET amount = $2, updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING ` + fineColumns

type UpdatePendingFineAmountParams struct {
	ID     int32
	Amount pgtype.Numeric
}

func (q *Queries) UpdatePendingFineAmount(ctx context.Context, arg UpdatePendingFineAmountParams) (Fine, error) {
	return scanFine(q.db.QueryRow(ctx, updatePendingFineAmount, arg.ID, arg.Amount))
}

// resolveFine settles a pending fine as paid or waived; the status guard
// makes double resolution surface as no row.
const resolveFine = `
UPDATE fines
SET status = $2,
    method = $3,
    waive_reason = $4,
    resolved_by = $5,
    resolved_at = $6,
    updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING ` + fineColumns

type ResolveFineParams struct {
	ID          int32
	Status      string
	Method      pgtype.Text
	WaiveReason pgtype.Text
	ResolvedBy  pgtype.Int4
	ResolvedAt  pgtype.Timestamp
}

func (q *Queries) ResolveFine(ctx context.Context, arg ResolveFineParams) (Fine, error) {
	row := q.db.QueryRow(ctx, resolveFine,
		arg.ID, arg.Status, arg.Method, arg.WaiveReason, arg.ResolvedBy, arg.ResolvedAt)
	return scanFine(row)
}

const listFines = `
SELECT ` + fineColumns + ` FROM fines
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

type ListFinesParams struct {
	Status string
	Limit  int32
	Offset int32
}

func (q *Queries) ListFines(ctx context.Context, arg ListFinesParams) ([]Fine, error) {
	rows, err := q.db.Query(ctx, listFines, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fines []Fine
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, err
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}

const listFinesByUser = `
SELECT f.id, f.issue_id, f.amount, f.status, f.method, f.waive_reason,
       f.resolved_by, f.resolved_at, f.created_at, f.updated_at
FROM fines f
JOIN book_issues i ON i.id = f.issue_id
WHERE i.user_id = $1
ORDER BY f.created_at DESC
LIMIT $2 OFFSET $3`

type ListFinesByUserParams struct {
	UserID int32
	Limit  int32
	Offset int32
}

func (q *Queries) ListFinesByUser(ctx context.Context, arg ListFinesByUserParams) ([]Fine, error) {
	rows, err := q.db.Query(ctx, listFinesByUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fines []Fine
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, err
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}

const countFines = `
SELECT COUNT(*) FROM fines WHERE ($1 = '' OR status = $1)`

func (q *Queries) CountFines(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countFines, status).Scan(&count)
	return count, err
}
