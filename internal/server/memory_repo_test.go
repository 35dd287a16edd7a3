package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookreview/internal/apperror"
	"bookreview/internal/book"
	"bookreview/internal/user"
)

// memoryUsers is an in-memory user.Repository.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]user.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]user.User{}}
}

func (m *memoryUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperror.Conflict("email already registered")
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	m.users[u.ID] = *u
	return nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, apperror.NotFound("user not found")
}

// memoryBooks is an in-memory book.Repository with the same ordering and
// version semantics as the Postgres one.
type memoryBooks struct {
	mu    sync.Mutex
	seq   int
	books map[string]memBook
}

type memBook struct {
	book.Book
	seq int
}

func newMemoryBooks() *memoryBooks {
	return &memoryBooks{books: map[string]memBook{}}
}

func (m *memoryBooks) Create(_ context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := time.Now()
	b.ID = uuid.NewString()
	b.Ratings = []book.Rating{}
	b.AverageRating = 0
	b.Version = 0
	b.CreatedAt, b.UpdatedAt = now, now
	m.books[b.ID] = memBook{Book: clone(*b), seq: m.seq}
	return nil
}

func (m *memoryBooks) GetByID(_ context.Context, id string) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.books[id]; ok {
		return clone(b.Book), nil
	}
	return book.Book{}, apperror.NotFound("Book not found")
}

func (m *memoryBooks) List(_ context.Context) ([]book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(a, b memBook) bool { return a.seq < b.seq }, 0), nil
}

func (m *memoryBooks) BestRated(_ context.Context, limit int) ([]book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(a, b memBook) bool {
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return a.seq < b.seq
	}, limit), nil
}

func (m *memoryBooks) UpdateMetadata(_ context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.books[b.ID]
	if !ok {
		return apperror.NotFound("Book not found")
	}
	stored.Title, stored.Author, stored.Year, stored.Genre = b.Title, b.Author, b.Year, b.Genre
	stored.ImageURL, stored.ImageBlurHash = b.ImageURL, b.ImageBlurHash
	stored.UpdatedAt = time.Now()
	b.UpdatedAt = stored.UpdatedAt
	m.books[b.ID] = stored
	return nil
}

func (m *memoryBooks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return apperror.NotFound("Book not found")
	}
	delete(m.books, id)
	return nil
}

func (m *memoryBooks) ApplyRating(_ context.Context, id string, expectedVersion int, ratings []book.Rating, average float64) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.books[id]
	if !ok || stored.Version != expectedVersion {
		return book.Book{}, book.ErrVersionConflict
	}
	stored.Ratings = append([]book.Rating{}, ratings...)
	stored.AverageRating = average
	stored.Version++
	stored.UpdatedAt = time.Now()
	m.books[id] = stored
	return clone(stored.Book), nil
}

func (m *memoryBooks) sorted(less func(a, b memBook) bool, limit int) []book.Book {
	all := make([]memBook, 0, len(m.books))
	for _, b := range m.books {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]book.Book, len(all))
	for i, b := range all {
		out[i] = clone(b.Book)
	}
	return out
}

func clone(b book.Book) book.Book {
	b.Ratings = append([]book.Rating{}, b.Ratings...)
	return b
}
