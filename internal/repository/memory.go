package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/booklist-service/internal/model"
)

// MemoryUserRepo is an in-process UserStore. It is used by the memory
// driver and throughout the tests.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byEmail: make(map[string]model.User)}
}

func (r *MemoryUserRepo) Init(context.Context) error { return nil }

func (r *MemoryUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.byEmail[u.Email] = *u
	return nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

// Len returns the number of stored users.
func (r *MemoryUserRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}

// MemoryBookRepo is an in-process BookStore keeping insertion order.
type MemoryBookRepo struct {
	mu     sync.RWMutex
	books  []model.Book
	nextID uint64
}

// NewMemoryBookRepo returns a store preloaded with seed.
func NewMemoryBookRepo(seed ...model.Book) *MemoryBookRepo {
	r := &MemoryBookRepo{}
	for i := range seed {
		_ = r.Insert(context.Background(), &seed[i])
	}
	return r
}

func (r *MemoryBookRepo) Init(context.Context) error { return nil }

func (r *MemoryBookRepo) Insert(_ context.Context, b *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	r.books = append(r.books, *b)
	return nil
}

func (r *MemoryBookRepo) ListAll(context.Context) ([]model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Book, len(r.books))
	copy(out, r.books)
	return out, nil
}

func (r *MemoryBookRepo) FindBy(_ context.Context, field BookField, value string) ([]model.Book, error) {
	if !field.Valid() {
		return nil, ErrUnknownField
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Book, 0)
	for _, b := range r.books {
		if fieldValue(b, field) == value {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryBookRepo) GetByISBN(_ context.Context, isbn string) (model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return model.Book{}, ErrBookNotFound
}

// UpdateByISBN finds and merges under one write lock.
func (r *MemoryBookRepo) UpdateByISBN(_ context.Context, isbn string, patch model.BookPatch) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.books {
		if r.books[i].ISBN == isbn {
			r.books[i] = patch.Apply(r.books[i])
			return r.books[i], nil
		}
	}
	return model.Book{}, ErrBookNotFound
}

func fieldValue(b model.Book, f BookField) string {
	switch f {
	case FieldAuthor:
		return b.Author
	case FieldTitle:
		return b.Title
	case FieldISBN:
		return b.ISBN
	}
	return ""
}
