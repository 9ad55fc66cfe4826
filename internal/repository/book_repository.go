// This file defines the MySQL-backed catalog store. Books are looked up
// by exact field equality and updated in place by ISBN.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/booklist-service/internal/model"
)

// utf8mb4_bin keeps lookups exact: no case or accent folding.
const createBooksTable = `
CREATE TABLE IF NOT EXISTS books (
	id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	isbn             VARCHAR(64)    NOT NULL DEFAULT '',
	title            VARCHAR(512)   NOT NULL DEFAULT '',
	author           VARCHAR(255)   NOT NULL DEFAULT '',
	genre            VARCHAR(128)   NOT NULL DEFAULT '',
	publisher        VARCHAR(255)   NOT NULL DEFAULT '',
	publication_year VARCHAR(16)    NOT NULL DEFAULT '',
	language         VARCHAR(64)    NOT NULL DEFAULT '',
	format           VARCHAR(64)    NOT NULL DEFAULT '',
	edition          VARCHAR(64)    NOT NULL DEFAULT '',
	price            DOUBLE         NOT NULL DEFAULT 0,
	KEY idx_books_isbn (isbn),
	KEY idx_books_author (author),
	KEY idx_books_title (title(191))
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`

const bookColumns = "id,isbn,title,author,genre,publisher,publication_year,language,format,edition,price"

// bookFieldColumns maps lookup fields to their columns. Only these
// columns are ever interpolated into SQL.
var bookFieldColumns = map[BookField]string{
	FieldAuthor: "author",
	FieldTitle:  "title",
	FieldISBN:   "isbn",
}

// BookRepo is the MySQL-backed BookStore.
type BookRepo struct {
	db *sql.DB
}

// NewBookRepo constructs a BookRepo with the provided DB handle.
func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{db: db}
}

// Init creates the books table when it does not exist yet.
func (r *BookRepo) Init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createBooksTable)
	return err
}

// Insert adds a book and populates its row id.
func (r *BookRepo) Insert(ctx context.Context, b *model.Book) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO books (isbn,title,author,genre,publisher,publication_year,language,format,edition,price)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.ISBN, b.Title, b.Author, b.Genre, b.Publisher, b.PublicationYear, b.Language, b.Format, b.Edition, b.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ListAll returns every book in row order.
func (r *BookRepo) ListAll(ctx context.Context) ([]model.Book, error) {
	return r.query(ctx, "SELECT "+bookColumns+" FROM books ORDER BY id")
}

// FindBy returns the books whose field equals value.
func (r *BookRepo) FindBy(ctx context.Context, field BookField, value string) ([]model.Book, error) {
	col, ok := bookFieldColumns[field]
	if !ok {
		return nil, ErrUnknownField
	}
	return r.query(ctx, "SELECT "+bookColumns+" FROM books WHERE "+col+" = ? ORDER BY id", value)
}

// GetByISBN returns the first book with the given ISBN or ErrBookNotFound.
func (r *BookRepo) GetByISBN(ctx context.Context, isbn string) (model.Book, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE isbn = ? ORDER BY id LIMIT 1", isbn)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, ErrBookNotFound
	}
	return b, err
}

// UpdateByISBN locks the first row carrying isbn, merges the patch and
// writes the full row back inside one transaction. Concurrent updates to
// the same ISBN serialize on the row lock; the last one to commit wins.
func (r *BookRepo) UpdateByISBN(ctx context.Context, isbn string, patch model.BookPatch) (model.Book, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Book{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE isbn = ? ORDER BY id LIMIT 1 FOR UPDATE", isbn)
	current, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, ErrBookNotFound
		}
		return model.Book{}, err
	}

	merged := patch.Apply(current)
	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET title=?, author=?, genre=?, publisher=?, publication_year=?,
		 language=?, format=?, edition=?, price=? WHERE id=?`,
		merged.Title, merged.Author, merged.Genre, merged.Publisher, merged.PublicationYear,
		merged.Language, merged.Format, merged.Edition, merged.Price, merged.ID); err != nil {
		return model.Book{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Book{}, err
	}
	return merged, nil
}

func (r *BookRepo) query(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanBook(row interface{ Scan(dest ...any) error }) (model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Genre, &b.Publisher,
		&b.PublicationYear, &b.Language, &b.Format, &b.Edition, &b.Price)
	return b, err
}
