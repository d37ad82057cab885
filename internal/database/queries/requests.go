package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const requestColumns = `id, user_id, book_id, status, priority, requested_days, notes, admin_notes, processed_by, request_date, processed_date, created_at, updated_at`

func scanRequest(row interface {
	Scan(dest ...interface{}) error
}) (BookRequest, error) {
	var r BookRequest
	err := row.Scan(
		&r.ID, &r.UserID, &r.BookID, &r.Status, &r.Priority, &r.RequestedDays,
		&r.Notes, &r.AdminNotes, &r.ProcessedBy, &r.RequestDate, &r.ProcessedDate,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

const createRequest = `
INSERT INTO book_requests (user_id, book_id, status, priority, requested_days, notes, request_date)
VALUES ($1, $2, 'pending', $3, $4, $5, $6)
RETURNING ` + requestColumns

type CreateRequestParams struct {
	UserID        int32
	BookID        int32
	Priority      string
	RequestedDays pgtype.Int4
	Notes         pgtype.Text
	RequestDate   pgtype.Timestamp
}

func (q *Queries) CreateRequest(ctx context.Context, arg CreateRequestParams) (BookRequest, error) {
	row := q.db.QueryRow(ctx, createRequest,
		arg.UserID, arg.BookID, arg.Priority, arg.RequestedDays, arg.Notes, arg.RequestDate)
	return scanRequest(row)
}

const getRequestByID = `
SELECT ` + requestColumns + ` FROM book_requests WHERE id = $1`

func (q *Queries) GetRequestByID(ctx context.Context, id int32) (BookRequest, error) {
	return scanRequest(q.db.QueryRow(ctx, getRequestByID, id))
}

// getOpenRequestForUserBook backs the duplicate-request check: at most one
// pending or approved request per (user, book) pair.
const getOpenRequestForUserBook = `
SELECT ` + requestColumns + ` FROM book_requests
WHERE user_id = $1 AND book_id = $2 AND status IN ('pending', 'approved')
LIMIT 1`

type GetOpenRequestForUserBookParams struct {
	UserID int32
	BookID int32
}

func (q *Queries) GetOpenRequestForUserBook(ctx context.Context, arg GetOpenRequestForUserBookParams) (BookRequest, error) {
	return scanRequest(q.db.QueryRow(ctx, getOpenRequestForUserBook, arg.UserID, arg.BookID))
}

// transitionRequestStatus moves a request between statuses with the expected
// current status in the WHERE clause, so a lost race surfaces as no row
// instead of a silently clobbered transition.
const transitionRequestStatus = `
UPDATE book_requests
SET status = $3,
    admin_notes = COALESCE($4, admin_notes),
    processed_by = COALESCE($5, processed_by),
    processed_date = $6,
    updated_at = now()
WHERE id = $1 AND status = $2
RETURNING ` + requestColumns

type TransitionRequestStatusParams struct {
	ID             int32
	ExpectedStatus string
	NewStatus      string
	AdminNotes     pgtype.Text
	ProcessedBy    pgtype.Int4
	ProcessedDate  pgtype.Timestamp
}

func (q *Queries) TransitionRequestStatus(ctx context.Context, arg TransitionRequestStatusParams) (BookRequest, error) {
	row := q.db.QueryRow(ctx, transitionRequestStatus,
		arg.ID, arg.ExpectedStatus, arg.NewStatus, arg.AdminNotes, arg.ProcessedBy, arg.ProcessedDate)
	return scanRequest(row)
}

const listRequests = `
SELECT r.id, r.user_id, r.book_id, r.status, r.priority, r.requested_days,
       r.notes, r.admin_notes, r.processed_by, r.request_date, r.processed_date,
       r.created_at, r.updated_at,
       b.title, b.author, u.username
FROM book_requests r
JOIN books b ON b.id = r.book_id
JOIN users u ON u.id = r.user_id
WHERE ($1 = '' OR r.status = $1)
ORDER BY r.request_date DESC
LIMIT $2 OFFSET $3`

type ListRequestsParams struct {
	Status string
	Limit  int32
	Offset int32
}

type ListRequestsRow struct {
	BookRequest
	Title    string
	Author   string
	Username string
}

func (q *Queries) ListRequests(ctx context.Context, arg ListRequestsParams) ([]ListRequestsRow, error) {
	rows, err := q.db.Query(ctx, listRequests, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ListRequestsRow
	for rows.Next() {
		var r ListRequestsRow
		err := rows.Scan(
			&r.ID, &r.UserID, &r.BookID, &r.Status, &r.Priority, &r.RequestedDays,
			&r.Notes, &r.AdminNotes, &r.ProcessedBy, &r.RequestDate, &r.ProcessedDate,
			&r.CreatedAt, &r.UpdatedAt,
			&r.Title, &r.Author, &r.Username,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

const listRequestsByUser = `
SELECT r.id, r.user_id, r.book_id, r.status, r.priority, r.requested_days,
       r.notes, r.admin_notes, r.processed_by, r.request_date, r.processed_date,
       r.created_at, r.updated_at,
       b.title, b.author
FROM book_requests r
JOIN books b ON b.id = r.book_id
WHERE r.user_id = $1
ORDER BY r.request_date DESC
LIMIT $2 OFFSET $3`

type ListRequestsByUserParams struct {
	UserID int32
	Limit  int32
	Offset int32
}

type ListRequestsByUserRow struct {
	BookRequest
	Title  string
	Author string
}

func (q *Queries) ListRequestsByUser(ctx context.Context, arg ListRequestsByUserParams) ([]ListRequestsByUserRow, error) {
	rows, err := q.db.Query(ctx, listRequestsByUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ListRequestsByUserRow
	for rows.Next() {
		var r ListRequestsByUserRow
		err := rows.Scan(
			&r.ID, &r.UserID, &r.BookID, &r.Status, &r.Priority, &r.RequestedDays,
			&r.Notes, &r.AdminNotes, &r.ProcessedBy, &r.RequestDate, &r.ProcessedDate,
			&r.CreatedAt, &r.UpdatedAt,
			&r.Title, &r.Author,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

const countOpenRequestsByUser = `
SELECT COUNT(*) FROM book_requests
WHERE user_id = $1 AND status IN ('pending', 'approved')`

func (q *Queries) CountOpenRequestsByUser(ctx context.Context, userID int32) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countOpenRequestsByUser, userID).Scan(&count)
	return count, err
}

const countRequests = `
SELECT COUNT(*) FROM book_requests WHERE ($1 = '' OR status = $1)`

func (q *Queries) CountRequests(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countRequests, status).Scan(&count)
	return count, err
}
