// Package cli implements filterctl, a command line tool that parses,
// explains and evaluates job post filters against a fixture data set.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"jobboard/internal/domain/filter"
	"jobboard/internal/domain/jobfilter"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/fixtures"
	"jobboard/internal/infrastructure/storage/memory"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	fixture    string
	now        string
	structured bool
	output     string
}

// NewRoot returns the root command.
func NewRoot() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "filterctl",
		Short:         "filterctl parses, explains and evaluates job post filters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.output {
			case "text", "json":
				return nil
			}
			return fmt.Errorf("unknown output %q, want text or json", opts.output)
		},
	}
	rootFlags(cmd, opts)
	cmd.AddCommand(newParseCmd(opts), newExplainCmd(opts), newEvalCmd(opts))
	return cmd
}

// rootFlags registers the persistent flags on cmd.
func rootFlags(cmd *cobra.Command, opts *options) {
	cmd.PersistentFlags().StringVarP(&opts.fixture, "fixture", "f", "", "fixture JSON (defaults to the bundled sample)")
	cmd.PersistentFlags().StringVar(&opts.now, "now", "", "reference time for relative dates (RFC3339 or YYYY-MM-DD)")
	cmd.PersistentFlags().BoolVarP(&opts.structured, "structured", "s", false, "treat the filter argument as structured JSON")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
}

// env is what a subcommand runs against.
type env struct {
	store    *memory.Store
	posts    map[string]jobpost.JobPost
	compiler *jobfilter.Compiler
}

func (o *options) env() (*env, error) {
	data := fixtures.Jobs
	if o.fixture != "" {
		b, err := os.ReadFile(o.fixture)
		if err != nil {
			return nil, err
		}
		data = b
	}
	store, posts, err := memory.LoadFixture(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	clk, err := o.clock()
	if err != nil {
		return nil, err
	}
	return &env{
		store:    store,
		posts:    posts,
		compiler: jobfilter.NewCompiler(jobfilter.DefaultRegistry(), store, jobfilter.WithClock(clk)),
	}, nil
}

func (o *options) clock() (clock.Clock, error) {
	if o.now == "" {
		return clock.New(), nil
	}
	t, err := time.Parse(time.RFC3339, o.now)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, o.now); err != nil {
			return nil, fmt.Errorf("invalid --now %q", o.now)
		}
	}
	mock := clock.NewMock()
	mock.Set(t)
	return mock, nil
}

// node parses the filter argument in the form selected by --structured.
func (o *options) node(e *env, arg string) (filter.Node, error) {
	if !o.structured {
		return filter.Parse(arg)
	}
	return filter.ParseJSON([]byte(arg), e.compiler.NormalizeOptions()...)
}

func (o *options) print(cmd *cobra.Command, text string, value any) error {
	if o.output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
	return err
}

func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
