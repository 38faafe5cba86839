package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type searcher interface {
	Search(ctx context.Context, collectionID int64, q query.Query) ([]models.Document, error)
}

type savedSearcher interface {
	List(ctx context.Context, collectionID int64) ([]models.SavedSearch, error)
	Run(ctx context.Context, collectionID, id int64) ([]models.Document, error)
}

type backend struct {
	searches      searcher
	savedSearches savedSearcher
}

type opener func(ctx context.Context) (*backend, func(), error)

type options struct {
	asJSON  bool
	timeout time.Duration
}

func newRootCmd(open opener) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "ingressearch-query",
		Short:         "Run ad-hoc and saved searches against a document store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "abandon the search after this long")

	root.AddCommand(
		newRunCmd(open, opts),
		newSearchCmd(open, opts),
		newListCmd(open, opts),
	)
	return root
}

func newRunCmd(open opener, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <collection-id> <search-id>",
		Short: "Run a saved search",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withBackend(cmd, open, opts, func(ctx context.Context, b *backend) error {
				docs, err := b.savedSearches.Run(ctx, ids[0], ids[1])
				if err != nil {
					return err
				}
				return printDocuments(cmd.OutOrStdout(), docs, opts.asJSON)
			})
		},
	}
}

func newSearchCmd(open opener, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <collection-id> [query-json | -]",
		Short: "Run an ad-hoc query; reads the query from stdin when given -",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[:1])
			if err != nil {
				return err
			}

			raw := "{}"
			if len(args) == 2 {
				raw = args[1]
			}
			if raw == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read query: %w", err)
				}
				raw = string(data)
			}

			q, err := query.Parse([]byte(raw))
			if err != nil {
				return err
			}

			return withBackend(cmd, open, opts, func(ctx context.Context, b *backend) error {
				docs, err := b.searches.Search(ctx, ids[0], q)
				if err != nil {
					return err
				}
				return printDocuments(cmd.OutOrStdout(), docs, opts.asJSON)
			})
		},
	}
}

func newListCmd(open opener, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <collection-id>",
		Short: "List a collection's saved searches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withBackend(cmd, open, opts, func(ctx context.Context, b *backend) error {
				searches, err := b.savedSearches.List(ctx, ids[0])
				if err != nil {
					return err
				}
				return printSavedSearches(cmd.OutOrStdout(), searches, opts.asJSON)
			})
		},
	}
}

func withBackend(cmd *cobra.Command, open opener, opts *options, fn func(context.Context, *backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	b, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(ctx, b)
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids[i] = id
	}
	return ids, nil
}

func printDocuments(w io.Writer, docs []models.Document, asJSON bool) error {
	if asJSON {
		return writeJSON(w, docs)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "created_at", "data"})
	table.SetAutoWrapText(false)
	for _, doc := range docs {
		table.Append([]string{
			strconv.FormatInt(doc.ID, 10),
			doc.CreatedAt.Format(time.RFC3339),
			string(doc.Data),
		})
	}
	table.SetFooter([]string{"", "count", strconv.Itoa(len(docs))})
	table.Render()
	return nil
}

func printSavedSearches(w io.Writer, searches []models.SavedSearch, asJSON bool) error {
	if asJSON {
		return writeJSON(w, searches)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "name", "version", "query"})
	table.SetAutoWrapText(false)
	for _, s := range searches {
		q, err := json.Marshal(s.Query)
		if err != nil {
			return fmt.Errorf("encode query of %d: %w", s.ID, err)
		}
		table.Append([]string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			strconv.Itoa(s.Version),
			strings.TrimSpace(string(q)),
		})
	}
	table.Render()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
