package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const bookColumns = `id, book_code, title, author, isbn, category, total_copies, available_copies, is_active, created_at, updated_at`

func scanBook(row interface {
	Scan(dest ...interface{}) error
}) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.BookCode, &b.Title, &b.Author, &b.Isbn, &b.Category,
		&b.TotalCopies, &b.AvailableCopies, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

const createBook = `
INSERT INTO books (book_code, title, author, isbn, category, total_copies, available_copies)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING ` + bookColumns

type CreateBookParams struct {
	BookCode    string
	Title       string
	Author      string
	Isbn        pgtype.Text
	Category    string
	TotalCopies int32
}

func (q *Queries) CreateBook(ctx context.Context, arg CreateBookParams) (Book, error) {
	row := q.db.QueryRow(ctx, createBook,
		arg.BookCode, arg.Title, arg.Author, arg.Isbn, arg.Category, arg.TotalCopies)
	return scanBook(row)
}

const getBookByID = `
SELECT ` + bookColumns + ` FROM books WHERE id = $1`

func (q *Queries) GetBookByID(ctx context.Context, id int32) (Book, error) {
	return scanBook(q.db.QueryRow(ctx, getBookByID, id))
}

const getBookByCode = `
SELECT ` + bookColumns + ` FROM books WHERE book_code = $1`

func (q *Queries) GetBookByCode(ctx context.Context, bookCode string) (Book, error) {
	return scanBook(q.db.QueryRow(ctx, getBookByCode, bookCode))
}

const updateBook = `
UPDATE books
SET title = $2,
    author = $3,
    isbn = $4,
    category = $5,
    total_copies = $6,
    available_copies = available_copies + $7,
    updated_at = now()
WHERE id = $1
  AND available_copies + $7 >= 0
  AND available_copies + $7 <= $6
RETURNING ` + bookColumns

type UpdateBookParams struct {
	ID          int32
	Title       string
	Author      string
	Isbn        pgtype.Text
	Category    string
	TotalCopies int32
	// CopiesDelta adjusts available_copies by the same amount total_copies
	// changed, so copies currently on loan stay accounted for.
	CopiesDelta int32
}

func (q *Queries) UpdateBook(ctx context.Context, arg UpdateBookParams) (Book, error) {
	row := q.db.QueryRow(ctx, updateBook,
		arg.ID, arg.Title, arg.Author, arg.Isbn, arg.Category, arg.TotalCopies, arg.CopiesDelta)
	return scanBook(row)
}

const softDeleteBook = `
UPDATE books SET is_active = false, updated_at = now() WHERE id = $1`

func (q *Queries) SoftDeleteBook(ctx context.Context, id int32) error {
	_, err := q.db.Exec(ctx, softDeleteBook, id)
	return err
}

// reserveBookCopy is the single atomic read-modify-write that hands a copy
// out. The available_copies > 0 guard makes concurrent reservations of the
// last copy resolve to exactly one winner.
const reserveBookCopy = `
UPDATE books
SET available_copies = available_copies - 1, updated_at = now()
WHERE id = $1 AND is_active = true AND available_copies > 0
RETURNING ` + bookColumns

func (q *Queries) ReserveBookCopy(ctx context.Context, id int32) (Book, error) {
	return scanBook(q.db.QueryRow(ctx, reserveBookCopy, id))
}

// releaseBookCopy is guarded by available_copies < total_copies; a miss on
// an existing book means the ledger and issue records have diverged.
const releaseBookCopy = `
UPDATE books
SET available_copies = available_copies + 1, updated_at = now()
WHERE id = $1 AND available_copies < total_copies
RETURNING ` + bookColumns

func (q *Queries) ReleaseBookCopy(ctx context.Context, id int32) (Book, error) {
	return scanBook(q.db.QueryRow(ctx, releaseBookCopy, id))
}

const listBooks = `
SELECT ` + bookColumns + ` FROM books
WHERE is_active = true
ORDER BY title
LIMIT $1 OFFSET $2`

type ListBooksParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListBooks(ctx context.Context, arg ListBooksParams) ([]Book, error) {
	rows, err := q.db.Query(ctx, listBooks, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

const searchBooks = `
SELECT ` + bookColumns + ` FROM books
WHERE is_active = true
  AND (title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%' OR isbn = $1)
  AND ($2 = '' OR category = $2)
ORDER BY title
LIMIT $3 OFFSET $4`

type SearchBooksParams struct {
	Query    string
	Category string
	Limit    int32
	Offset   int32
}

func (q *Queries) SearchBooks(ctx context.Context, arg SearchBooksParams) ([]Book, error) {
	rows, err := q.db.Query(ctx, searchBooks, arg.Query, arg.Category, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

const countSearchBooks = `
SELECT COUNT(*) FROM books
WHERE is_active = true
  AND (title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%' OR isbn = $1)
  AND ($2 = '' OR category = $2)`

type CountSearchBooksParams struct {
	Query    string
	Category string
}

func (q *Queries) CountSearchBooks(ctx context.Context, arg CountSearchBooksParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countSearchBooks, arg.Query, arg.Category).Scan(&count)
	return count, err
}

const countBooks = `
SELECT COUNT(*) FROM books WHERE is_active = true`

func (q *Queries) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countBooks).Scan(&count)
	return count, err
}
