package catalog

import "context"

type Author struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Book.AuthorID is not checked against the author collection.
type Book struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	AuthorID int32  `json:"authorId"`
}

type Store interface {
	Ping(ctx context.Context) error

	ListBooks(ctx context.Context) ([]Book, error)
	GetBook(ctx context.Context, id int32) (Book, bool, error)
	BooksByAuthor(ctx context.Context, authorID int32) ([]Book, error)
	AddBook(ctx context.Context, name string, authorID int32) (Book, error)

	ListAuthors(ctx context.Context) ([]Author, error)
	GetAuthor(ctx context.Context, id int32) (Author, bool, error)
	AddAuthor(ctx context.Context, name string) (Author, error)

	Counts(ctx context.Context) (authors, books int)
}

func NewStore() Store {
	return NewMemStore()
}
