// Command readwise is a small scriptable front-end to the Readwise and
// Readwise Reader APIs. Listing commands stream records as JSON lines so the
// output pipes cleanly into jq and friends.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/mrlokans/go-readwise"
	"github.com/mrlokans/go-readwise/config"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "readwise",
		Usage:   "Interact with the Readwise and Readwise Reader APIs",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Readwise access token",
				EnvVars: []string{"READWISE_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "reader-token",
				Usage:   "Reader access token (defaults to --token)",
				EnvVars: []string{"READWISE_READER_TOKEN"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log requests to stderr",
				EnvVars: []string{"READWISE_DEBUG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "Check that the configured token is accepted",
				Action: validateToken,
			},
			{
				Name:  "books",
				Usage: "List books",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Filter by category (books, articles, tweets, podcasts)",
					},
				},
				Action: listBooks,
			},
			{
				Name:  "highlights",
				Usage: "List highlights of a book",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "book-id",
						Aliases:  []string{"b"},
						Usage:    "Book ID",
						Required: true,
					},
				},
				Action: listHighlights,
			},
			{
				Name:      "tags",
				Usage:     "List tags of a book",
				ArgsUsage: "<book-id>",
				Action:    listTags,
			},
			{
				Name:      "add-tag",
				Usage:     "Add a tag to a book",
				ArgsUsage: "<book-id> <name>",
				Action:    addTag,
			},
			{
				Name:      "delete-tag",
				Usage:     "Delete a tag from a book",
				ArgsUsage: "<book-id> <tag-id>",
				Action:    deleteTag,
			},
			{
				Name:  "create-highlight",
				Usage: "Create a highlight",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Required: true, Usage: "Highlight text"},
					&cli.StringFlag{Name: "title", Required: true, Usage: "Book title"},
					&cli.StringFlag{Name: "author", Usage: "Book author"},
					&cli.StringFlag{Name: "category", Usage: "Book category (default: articles)"},
					&cli.StringFlag{Name: "note", Usage: "Highlight note"},
					&cli.StringFlag{Name: "source-url", Usage: "Source URL"},
					&cli.TimestampFlag{
						Name:   "highlighted-at",
						Usage:  "When the highlight was made (RFC 3339)",
						Layout: time.RFC3339,
					},
				},
				Action: createHighlight,
			},
			{
				Name:      "save",
				Usage:     "Save a document to Reader",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Document title"},
					&cli.StringFlag{Name: "author", Usage: "Document author"},
					&cli.StringFlag{Name: "summary", Usage: "Document summary"},
					&cli.StringFlag{Name: "location", Usage: "Reading location (new, later, archive, feed)"},
					&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Tag name (repeatable)"},
				},
				Action: saveDocument,
			},
			{
				Name:  "docs",
				Usage: "List Reader documents",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Single document ID"},
					&cli.StringFlag{Name: "location", Usage: "Filter by reading location"},
					&cli.StringFlag{Name: "category", Usage: "Filter by category"},
					&cli.TimestampFlag{
						Name:   "updated-after",
						Usage:  "Only documents changed after this instant (RFC 3339)",
						Layout: time.RFC3339,
					},
				},
				Action: listDocuments,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context) (*readwise.Client, error) {
	token := c.String("token")
	if token == "" {
		token = config.New().Readwise.Token
	}
	if token == "" {
		return nil, cli.Exit("no token configured, set READWISE_TOKEN or pass --token", 2)
	}
	return readwise.New(token, readwise.WithLogger(logger(c))), nil
}

func newReader(c *cli.Context) (*readwise.Reader, error) {
	token := c.String("reader-token")
	if token == "" {
		cfg := config.New()
		token = cfg.Reader.Token
	}
	if token == "" {
		token = c.String("token")
	}
	if token == "" {
		return nil, cli.Exit("no token configured, set READWISE_READER_TOKEN or pass --reader-token", 2)
	}
	return readwise.NewReader(token, readwise.WithLogger(logger(c))), nil
}

func logger(c *cli.Context) *slog.Logger {
	if !c.Bool("verbose") {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func validateToken(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	if err := client.ValidateToken(context.Background()); err != nil {
		return err
	}
	fmt.Println("token ok")
	return nil
}

func listBooks(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	it := client.Books(context.Background(), c.String("category"))
	return emitAll(it)
}

func listHighlights(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	it := client.BookHighlights(context.Background(), c.String("book-id"))
	return emitAll(it)
}

func listTags(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: readwise tags <book-id>", 2)
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}
	it := client.BookTags(context.Background(), c.Args().Get(0))
	return emitAll(it)
}

func addTag(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: readwise add-tag <book-id> <name>", 2)
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}
	return client.AddBookTag(context.Background(), c.Args().Get(0), c.Args().Get(1))
}

func deleteTag(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: readwise delete-tag <book-id> <tag-id>", 2)
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}
	return client.DeleteBookTag(context.Background(), c.Args().Get(0), c.Args().Get(1))
}

func createHighlight(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	return client.CreateHighlight(context.Background(), readwise.NewHighlight{
		Text:          c.String("text"),
		Title:         c.String("title"),
		Author:        c.String("author"),
		Category:      c.String("category"),
		Note:          c.String("note"),
		SourceURL:     c.String("source-url"),
		HighlightedAt: c.Timestamp("highlighted-at"),
	})
}

func saveDocument(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: readwise save <url>", 2)
	}
	reader, err := newReader(c)
	if err != nil {
		return err
	}
	resp, err := reader.SaveDocument(context.Background(), readwise.NewDocument{
		URL:      c.Args().Get(0),
		Title:    c.String("title"),
		Author:   c.String("author"),
		Summary:  c.String("summary"),
		Location: c.String("location"),
		Tags:     c.StringSlice("tag"),
	})
	if err != nil {
		return err
	}
	fmt.Println(string(resp))
	return nil
}

func listDocuments(c *cli.Context) error {
	reader, err := newReader(c)
	if err != nil {
		return err
	}
	it := reader.Documents(context.Background(), readwise.DocumentListOptions{
		ID:           c.String("id"),
		Location:     c.String("location"),
		Category:     c.String("category"),
		UpdatedAfter: c.Timestamp("updated-after"),
	})
	return emitAll(it)
}

// emitAll drains an iterator, printing one JSON object per line.
func emitAll[T any](it *readwise.Iterator[T]) error {
	enc := json.NewEncoder(os.Stdout)
	for it.Next() {
		if err := enc.Encode(it.Value()); err != nil {
			return err
		}
	}
	return it.Err()
}
