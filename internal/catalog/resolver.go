package catalog

import (
	"context"

	"github.com/samber/lo"
)

// Resolver serves both the Query and Mutation root types.
type Resolver struct {
	Store Store
}

type idArgs struct {
	ID int32
}

func (r *Resolver) Books(ctx context.Context) (*[]*bookResolver, error) {
	books, err := r.Store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return wrapBooks(r.Store, books), nil
}

func (r *Resolver) Book(ctx context.Context, args idArgs) (*bookResolver, error) {
	b, ok, err := r.Store.GetBook(ctx, args.ID)
	if err != nil || !ok {
		return nil, err
	}
	return &bookResolver{b: b, store: r.Store}, nil
}

func (r *Resolver) Authors(ctx context.Context) (*[]*authorResolver, error) {
	authors, err := r.Store.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	out := lo.Map(authors, func(a Author, _ int) *authorResolver {
		return &authorResolver{a: a, store: r.Store}
	})
	return &out, nil
}

func (r *Resolver) Author(ctx context.Context, args idArgs) (*authorResolver, error) {
	a, ok, err := r.Store.GetAuthor(ctx, args.ID)
	if err != nil || !ok {
		return nil, err
	}
	return &authorResolver{a: a, store: r.Store}, nil
}

type addBookArgs struct {
	Name     string
	AuthorID int32
}

func (r *Resolver) AddBook(ctx context.Context, args addBookArgs) (*bookResolver, error) {
	b, err := r.Store.AddBook(ctx, args.Name, args.AuthorID)
	if err != nil {
		return nil, err
	}
	return &bookResolver{b: b, store: r.Store}, nil
}

type addAuthorArgs struct {
	Name string
}

func (r *Resolver) AddAuthor(ctx context.Context, args addAuthorArgs) (*authorResolver, error) {
	a, err := r.Store.AddAuthor(ctx, args.Name)
	if err != nil {
		return nil, err
	}
	return &authorResolver{a: a, store: r.Store}, nil
}

func wrapBooks(store Store, books []Book) *[]*bookResolver {
	out := lo.Map(books, func(b Book, _ int) *bookResolver {
		return &bookResolver{b: b, store: store}
	})
	return &out
}

type bookResolver struct {
	b     Book
	store Store
}

func (r *bookResolver) ID() int32       { return r.b.ID }
func (r *bookResolver) Name() string    { return r.b.Name }
func (r *bookResolver) AuthorID() int32 { return r.b.AuthorID }

// Author is null when no author has the book's authorId.
func (r *bookResolver) Author(ctx context.Context) (*authorResolver, error) {
	a, ok, err := r.store.GetAuthor(ctx, r.b.AuthorID)
	if err != nil || !ok {
		return nil, err
	}
	return &authorResolver{a: a, store: r.store}, nil
}

type authorResolver struct {
	a     Author
	store Store
}

func (r *authorResolver) ID() int32    { return r.a.ID }
func (r *authorResolver) Name() string { return r.a.Name }

func (r *authorResolver) Book(ctx context.Context) (*[]*bookResolver, error) {
	books, err := r.store.BooksByAuthor(ctx, r.a.ID)
	if err != nil {
		return nil, err
	}
	return wrapBooks(r.store, books), nil
}
