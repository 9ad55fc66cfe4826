package repository

import (
	"context"

	"github.com/iliyamo/booklist-service/internal/model"
)

// BookField names a field that books can be looked up by.
type BookField string

const (
	FieldAuthor BookField = "Author"
	FieldTitle  BookField = "Title"
	FieldISBN   BookField = "ISBN"
)

// Valid reports whether f is a supported lookup field.
func (f BookField) Valid() bool {
	switch f {
	case FieldAuthor, FieldTitle, FieldISBN:
		return true
	}
	return false
}

// UserStore owns identity records.
type UserStore interface {
	Init(ctx context.Context) error
	// Create assigns an id when u.ID is empty and inserts the row. It
	// returns ErrEmailExists when the email is taken.
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// BookStore owns catalog records.
type BookStore interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, b *model.Book) error
	ListAll(ctx context.Context) ([]model.Book, error)
	// FindBy returns every book whose field equals value exactly. It
	// returns an empty slice when nothing matches.
	FindBy(ctx context.Context, field BookField, value string) ([]model.Book, error)
	// GetByISBN returns the first book carrying isbn.
	GetByISBN(ctx context.Context, isbn string) (model.Book, error)
	// UpdateByISBN merges patch into the first book carrying isbn as a
	// single atomic step and returns the stored result.
	UpdateByISBN(ctx context.Context, isbn string, patch model.BookPatch) (model.Book, error)
}
