package catalog

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

const schemaSDL = `
	schema {
		query: Query
		mutation: Mutation
	}

	"This is Book Type"
	type Book {
		id: Int!
		name: String!
		authorId: Int!
		author: Author
	}

	"This is an Author Type"
	type Author {
		id: Int!
		name: String!
		book: [Book]
	}

	"This is the root query"
	type Query {
		"A Collection of Books"
		books: [Book]
		book(id: Int!): Book
		"A Collection of Authors"
		authors: [Author]
		"Get a single author"
		author(id: Int!): Author
	}

	"This is a mutation query"
	type Mutation {
		"Add a book"
		addBook(name: String!, authorId: Int!): Book
		"Add an author"
		addAuthor(name: String!): Author
	}
`

type SchemaOptions struct {
	Log *zap.Logger

	// zero means unlimited
	MaxDepth       int
	MaxParallelism int
}

func NewSchema(store Store, opts SchemaOptions) (*graphql.Schema, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	so := []graphql.SchemaOpt{
		graphql.Logger(panicLogger{log: log}),
	}
	if opts.MaxDepth > 0 {
		so = append(so, graphql.MaxDepth(opts.MaxDepth))
	}
	if opts.MaxParallelism > 0 {
		so = append(so, graphql.MaxParallelism(opts.MaxParallelism))
	}

	return graphql.ParseSchema(schemaSDL, &Resolver{Store: store}, so...)
}

func SchemaSDL() string { return schemaSDL }

type panicLogger struct {
	log *zap.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.log.Error("graphql resolver panic", zap.Any("panic", value), zap.Stack("stack"))
}
