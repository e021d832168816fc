package jobfilter

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jobboard/internal/domain/filter"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/domain/predicate"
	"jobboard/pkg/logger"
)

var tracer = otel.Tracer("jobboard/jobfilter")

// Compiler turns condition trees into predicate trees.
//
// A Compiler holds no per-call state; concurrent calls are independent.
type Compiler struct {
	registry *Registry
	schema   jobpost.SchemaLookup
	clock    clock.Clock
	location *time.Location
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithClock sets the clock relative date terms are resolved against.
func WithClock(c clock.Clock) Option {
	return func(comp *Compiler) { comp.clock = c }
}

// WithLocation sets the time zone calendar days are computed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(comp *Compiler) { comp.location = loc }
}

// NewCompiler creates a compiler over a registry and a schema lookup.
func NewCompiler(registry *Registry, schema jobpost.SchemaLookup, opts ...Option) *Compiler {
	c := &Compiler{
		registry: registry,
		schema:   schema,
		clock:    clock.New(),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the registry the compiler dispatches through.
func (c *Compiler) Registry() *Registry {
	return c.registry
}

// CompileString parses a textual filter and compiles it.
func (c *Compiler) CompileString(ctx context.Context, text string) (predicate.Predicate, error) {
	node, err := filter.Parse(text)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, node)
}

// CompileStructured normalizes a structured filter and compiles it.
func (c *Compiler) CompileStructured(ctx context.Context, input map[string]any) (predicate.Predicate, error) {
	node, err := filter.Normalize(input, c.NormalizeOptions()...)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, node)
}

// NormalizeOptions returns the options structured input must be normalized with.
func (c *Compiler) NormalizeOptions() []filter.NormalizeOption {
	return []filter.NormalizeOption{filter.WithRelations(c.registry.RelationNames()...)}
}

// Compile validates a condition tree and compiles it into a simplified predicate.
// A nil tree compiles to Pass.
func (c *Compiler) Compile(ctx context.Context, node filter.Node) (predicate.Predicate, error) {
	ctx, span := tracer.Start(ctx, "filter.compile",
		trace.WithAttributes(attribute.String("filter", filter.Describe(node))))
	defer span.End()

	if err := filter.Validate(node); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ctx = withCalendar(ctx, c.clock.Now, c.location)
	p, err := c.compile(ctx, node)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return predicate.Simplify(p), nil
}

func (c *Compiler) compile(ctx context.Context, node filter.Node) (predicate.Predicate, error) {
	switch n := node.(type) {
	case nil:
		return predicate.Pass{}, nil
	case *filter.Group:
		terms := make([]predicate.Predicate, 0, len(n.Children))
		for _, child := range n.Children {
			p, err := c.compile(ctx, child)
			if err != nil {
				return nil, err
			}
			terms = append(terms, p)
		}
		if n.Op == filter.Or {
			return predicate.Or{Terms: terms}, nil
		}
		return predicate.And{Terms: terms}, nil
	case *filter.Standard:
		return c.standard(ctx, n)
	case *filter.Relationship:
		rel, ok := c.registry.Relation(n.Relation)
		if !ok {
			logger.Debug(ctx, "unknown relation filter ignored", "relation", n.Relation)
			return predicate.Pass{}, nil
		}
		return c.relationship(ctx, rel, n)
	case *filter.Attribute:
		return c.attribute(ctx, n)
	default:
		return nil, fmt.Errorf("unexpected condition node %T", node)
	}
}

func (c *Compiler) standard(ctx context.Context, n *filter.Standard) (predicate.Predicate, error) {
	if b, ok := c.registry.Field(n.Field); ok {
		return b.Build(ctx, n)
	}

	// A plain comparison on a relation name is a membership test.
	if rel, ok := c.registry.Relation(n.Field); ok {
		mode := filter.ModeHasAny
		switch n.Operator {
		case filter.Equal, filter.InList:
		case filter.NotEqual, filter.NotInList:
			mode = filter.ModeNone
		default:
			return predicate.Pass{}, nil
		}
		return c.relationship(ctx, rel, &filter.Relationship{
			Relation: rel.Name,
			Mode:     mode,
			Values:   listValues(n.Value),
		})
	}

	logger.Debug(ctx, "unknown filter ignored", "field", n.Field)
	return predicate.Pass{}, nil
}

// now returns the current moment in the compiler's time zone.
func (c *Compiler) now() time.Time {
	return c.clock.Now().In(c.location)
}
