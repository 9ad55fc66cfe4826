package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/booklist-service/internal/model"
	"github.com/iliyamo/booklist-service/internal/queue"
	"github.com/iliyamo/booklist-service/internal/repository"
)

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Authenticate(token string) (string, error)
}

// CatalogService exposes reads and the token-gated merge update over the
// catalog store.
type CatalogService struct {
	books  repository.BookStore
	auth   TokenVerifier
	events EventPublisher
	log    logrus.FieldLogger
}

// NewCatalogService builds the service. events may be nil.
func NewCatalogService(books repository.BookStore, auth TokenVerifier, events EventPublisher, log logrus.FieldLogger) *CatalogService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CatalogService{books: books, auth: auth, events: events, log: log}
}

// ListAll returns every book in store order.
func (s *CatalogService) ListAll(ctx context.Context) ([]model.Book, error) {
	books, err := s.books.ListAll(ctx)
	if err != nil {
		return nil, storeFailure("list books", err)
	}
	return books, nil
}

// QueryByField returns the books whose field equals value exactly. No
// match yields an empty slice, not an error.
func (s *CatalogService) QueryByField(ctx context.Context, field repository.BookField, value string) ([]model.Book, error) {
	if !field.Valid() {
		return nil, ErrInvalidField
	}
	books, err := s.books.FindBy(ctx, field, value)
	if err != nil {
		return nil, storeFailure("find books", err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// GetByISBN returns the first book carrying isbn.
func (s *CatalogService) GetByISBN(ctx context.Context, isbn string) (model.Book, error) {
	b, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return model.Book{}, ErrNotFound
		}
		return model.Book{}, storeFailure("get book", err)
	}
	return b, nil
}

// UpdateByISBN verifies token, then merges patch into the book carrying
// isbn and returns the stored result. The store is not touched when the
// token is rejected. Any valid token authorizes any update.
func (s *CatalogService) UpdateByISBN(ctx context.Context, isbn string, patch model.BookPatch, token string) (model.Book, error) {
	userID, err := s.auth.Authenticate(token)
	if err != nil {
		return model.Book{}, ErrUnauthorized
	}

	b, err := s.books.UpdateByISBN(ctx, isbn, patch)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return model.Book{}, ErrNotFound
		}
		return model.Book{}, storeFailure("update book", err)
	}

	s.log.WithFields(logrus.Fields{"isbn": isbn, "user_id": userID}).Info("book updated")
	if s.events != nil && !patch.Empty() {
		ev := queue.BookUpdatedEvent{
			ISBN:      b.ISBN,
			Title:     b.Title,
			UpdatedBy: userID,
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.events.PublishBookUpdated(ctx, ev); err != nil {
			s.log.WithError(err).WithField("isbn", isbn).Warn("publish book.updated failed")
		}
	}
	return b, nil
}
