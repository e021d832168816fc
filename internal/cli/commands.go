package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"jobboard/internal/core/id"
	"jobboard/internal/domain/filter"
	"jobboard/internal/domain/predicate"
	"jobboard/internal/infrastructure/storage/postgres/sqlfilter"
)

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILTER",
		Short: "Print the condition tree of a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env()
			if err != nil {
				return err
			}
			node, err := opts.node(e, args[0])
			if err != nil {
				return err
			}
			if err := filter.Validate(node); err != nil {
				return err
			}
			tree := filter.Describe(node)
			return opts.print(cmd, tree, map[string]string{"tree": tree})
		},
	}
}

func newExplainCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explain FILTER",
		Short: "Print the compiled predicate and the SQL it translates to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env()
			if err != nil {
				return err
			}
			node, err := opts.node(e, args[0])
			if err != nil {
				return err
			}
			p, err := e.compiler.Compile(background(cmd), node)
			if err != nil {
				return err
			}
			sql, sqlArgs, err := sqlfilter.New(sqlfilter.JobPostSchema()).SelectIDs(p)
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "tree:      %s\n", filter.Describe(node))
			fmt.Fprintf(&b, "predicate: %s\n", predicate.Format(p))
			fmt.Fprintf(&b, "sql:       %s\n", sql)
			for i, a := range sqlArgs {
				fmt.Fprintf(&b, "  $%d = %v\n", i+1, a)
			}
			return opts.print(cmd, b.String(), map[string]any{
				"tree":      filter.Describe(node),
				"predicate": predicate.Format(p),
				"sql":       sql,
				"args":      sqlArgs,
			})
		},
	}
}

type evalMatch struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

func newEvalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eval FILTER",
		Short: "List the fixture job posts matching a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env()
			if err != nil {
				return err
			}
			node, err := opts.node(e, args[0])
			if err != nil {
				return err
			}
			p, err := e.compiler.Compile(background(cmd), node)
			if err != nil {
				return err
			}

			keys := make(map[id.ID]string, len(e.posts))
			for key, post := range e.posts {
				keys[post.ID] = key
			}
			matched := make([]evalMatch, 0)
			for _, m := range e.store.Match(p) {
				matched = append(matched, evalMatch{Key: keys[m.ID], Title: m.Title})
			}
			sort.Slice(matched, func(i, j int) bool { return matched[i].Key < matched[j].Key })

			var b strings.Builder
			for _, m := range matched {
				fmt.Fprintf(&b, "%s\t%s\n", m.Key, m.Title)
			}
			fmt.Fprintf(&b, "%d of %d job posts match", len(matched), len(e.posts))
			return opts.print(cmd, b.String(), matched)
		},
	}
}
