package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"
)

var (
	seedAuthors = []Author{
		{ID: 1, Name: "J. K. Rowling"},
		{ID: 2, Name: "J. R. R. Tolkien"},
		{ID: 3, Name: "Brent Weeks"},
	}

	seedBooks = []Book{
		{ID: 1, Name: "Harry Potter and the Chamber of Secrets", AuthorID: 1},
		{ID: 2, Name: "Harry Potter and the Prisoner of Azkaban", AuthorID: 1},
		{ID: 3, Name: "Harry Potter and the Goblet of Fire", AuthorID: 1},
		{ID: 4, Name: "The Fellowship of the Ring", AuthorID: 2},
		{ID: 5, Name: "The Two Towers", AuthorID: 2},
		{ID: 6, Name: "The Return of the King", AuthorID: 2},
		{ID: 7, Name: "The Way of Shadows", AuthorID: 3},
		{ID: 8, Name: "Beyond the Shadows", AuthorID: 3},
	}
)

// MemStore keeps both collections in insertion order. Ids come from
// per-collection counters that only move forward, so an id is never handed
// out twice even if records are ever pruned.
type MemStore struct {
	mu      sync.RWMutex
	authors []Author
	books   []Book

	lastAuthorID int32
	lastBookID   int32
}

func NewMemStore() *MemStore {
	return NewMemStoreWith(seedAuthors, seedBooks)
}

// NewMemStoreWith starts the counters at the highest seeded id.
func NewMemStoreWith(authors []Author, books []Book) *MemStore {
	s := &MemStore{
		authors: slices.Clone(authors),
		books:   slices.Clone(books),
	}
	for _, a := range s.authors {
		s.lastAuthorID = max(s.lastAuthorID, a.ID)
	}
	for _, b := range s.books {
		s.lastBookID = max(s.lastBookID, b.ID)
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListBooks(ctx context.Context) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.books), nil
}

func (s *MemStore) GetBook(ctx context.Context, id int32) (Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := lo.Find(s.books, func(b Book) bool { return b.ID == id })
	return b, ok, nil
}

func (s *MemStore) BooksByAuthor(ctx context.Context, authorID int32) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Filter(s.books, func(b Book, _ int) bool { return b.AuthorID == authorID }), nil
}

func (s *MemStore) AddBook(ctx context.Context, name string, authorID int32) (Book, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastBookID++
	b := Book{ID: s.lastBookID, Name: name, AuthorID: authorID}
	s.books = append(s.books, b)
	return b, nil
}

func (s *MemStore) ListAuthors(ctx context.Context) ([]Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.authors), nil
}

func (s *MemStore) GetAuthor(ctx context.Context, id int32) (Author, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := lo.Find(s.authors, func(a Author) bool { return a.ID == id })
	return a, ok, nil
}

func (s *MemStore) AddAuthor(ctx context.Context, name string) (Author, error) {
	if err := ctx.Err(); err != nil {
		return Author{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAuthorID++
	a := Author{ID: s.lastAuthorID, Name: name}
	s.authors = append(s.authors, a)
	return a, nil
}

func (s *MemStore) Counts(ctx context.Context) (authors, books int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.authors), len(s.books)
}
