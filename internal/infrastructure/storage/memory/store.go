// Package memory is an in-process job post store. It evaluates predicates
// directly and serves the CLI, fixtures and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"jobboard/internal/core/id"
	"jobboard/internal/domain"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/domain/predicate"
)

// Store keeps job posts, the attribute schema and relation entities in memory.
// It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	posts      []jobpost.JobPost
	attributes map[string]jobpost.Attribute
	languages  []jobpost.Language
	locations  []jobpost.Location
	categories []jobpost.Category
}

// New creates an empty store.
func New() *Store {
	return &Store{attributes: make(map[string]jobpost.Attribute)}
}

// AddAttribute declares an attribute. The id is generated when nil.
func (s *Store) AddAttribute(a jobpost.Attribute) jobpost.Attribute {
	if id.IsNil(a.ID) {
		a.ID = id.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributes[strings.ToLower(a.Name)] = a
	return a
}

// AddLanguage returns the language with the given name, creating it if needed.
func (s *Store) AddLanguage(name string) jobpost.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.languages {
		if strings.EqualFold(l.Name, name) {
			return l
		}
	}
	l := jobpost.Language{ID: id.New(), Name: name}
	s.languages = append(s.languages, l)
	return l
}

// AddCategory returns the category with the given name, creating it if needed.
func (s *Store) AddCategory(name string) jobpost.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	c := jobpost.Category{ID: id.New(), Name: name}
	s.categories = append(s.categories, c)
	return c
}

// AddLocation returns the matching location, creating it if needed.
func (s *Store) AddLocation(city, state, country string) jobpost.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.locations {
		if strings.EqualFold(l.City, city) && strings.EqualFold(l.State, state) && strings.EqualFold(l.Country, country) {
			return l
		}
	}
	l := jobpost.Location{ID: id.New(), City: city, State: state, Country: country}
	s.locations = append(s.locations, l)
	return l
}

// AddPost stores a job post. Attribute values are matched to attributes by name.
func (s *Store) AddPost(p jobpost.JobPost) jobpost.JobPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
		p.UpdatedAt = p.CreatedAt
	}
	for i, v := range p.Attributes {
		v.JobPostID = p.ID
		if attr, ok := s.attributes[strings.ToLower(v.Name)]; ok && id.IsNil(v.AttributeID) {
			v.AttributeID = attr.ID
		}
		p.Attributes[i] = v
	}
	s.posts = append(s.posts, p)
	return p
}

// Posts returns a copy of every stored job post.
func (s *Store) Posts() []jobpost.JobPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.posts)
}

// Attributes returns the declared attributes sorted by name.
func (s *Store) Attributes() []jobpost.Attribute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]jobpost.Attribute, 0, len(s.attributes))
	for _, a := range s.attributes {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b jobpost.Attribute) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// ListAttributes returns the declared attributes. It matches the shape of the
// database schema source so the store can back an attribute cache.
func (s *Store) ListAttributes(context.Context) ([]jobpost.Attribute, error) {
	return s.Attributes(), nil
}

// Languages returns every language in insertion order.
func (s *Store) Languages() []jobpost.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.languages)
}

// Locations returns every location in insertion order.
func (s *Store) Locations() []jobpost.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.locations)
}

// Categories returns every category in insertion order.
func (s *Store) Categories() []jobpost.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// LookupAttribute implements jobpost.SchemaLookup.
func (s *Store) LookupAttribute(_ context.Context, name string) (jobpost.Attribute, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attributes[strings.ToLower(strings.TrimSpace(name))]
	return a, ok, nil
}

// ResolveRelation implements jobpost.SchemaLookup.
func (s *Store) ResolveRelation(_ context.Context, relation, field string, names []string) ([]id.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	hit := func(v string) bool {
		_, ok := wanted[strings.ToLower(strings.TrimSpace(v))]
		return ok
	}

	var ids []id.ID
	switch relation {
	case jobpost.RelationLanguages:
		for _, l := range s.languages {
			if hit(l.Name) {
				ids = append(ids, l.ID)
			}
		}
	case jobpost.RelationCategories:
		for _, c := range s.categories {
			if hit(c.Name) {
				ids = append(ids, c.ID)
			}
		}
	case jobpost.RelationLocations:
		for _, l := range s.locations {
			var v string
			switch field {
			case jobpost.LocationState:
				v = l.State
			case jobpost.LocationCountry:
				v = l.Country
			default:
				v = l.City
			}
			if hit(v) {
				ids = append(ids, l.ID)
			}
		}
	}
	return ids, nil
}

// Match returns every stored post satisfying p, in insertion order.
func (s *Store) Match(p predicate.Predicate) []jobpost.JobPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []jobpost.JobPost
	for i := range s.posts {
		if predicate.Evaluate(p, Record{Post: &s.posts[i]}) {
			out = append(out, s.posts[i])
		}
	}
	return out
}

// List implements jobpost.Repository.
func (s *Store) List(_ context.Context, f jobpost.ListFilter) (domain.ListResult[jobpost.JobPost], error) {
	matched := s.Match(f.Where)

	slices.SortStableFunc(matched, func(a, b jobpost.JobPost) int {
		c := compareBy(f.SortField, a, b)
		if f.Order == domain.Desc {
			return -c
		}
		return c
	})

	page := f.Page.Normalize()
	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := min(start+page.PerPage, len(matched))
	return domain.NewListResult(matched[start:end], total, page), nil
}

func compareBy(field string, a, b jobpost.JobPost) int {
	switch field {
	case "title":
		return cmp.Compare(a.Title, b.Title)
	case "company_name":
		return cmp.Compare(a.CompanyName, b.CompanyName)
	case "salary_min":
		return a.SalaryMin.Cmp(b.SalaryMin)
	case "salary_max":
		return a.SalaryMax.Cmp(b.SalaryMax)
	case "published_at":
		// nulls sort first ascending
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return 0
		case a.PublishedAt == nil:
			return -1
		case b.PublishedAt == nil:
			return 1
		}
		return a.PublishedAt.Compare(*b.PublishedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Record exposes a job post to predicate.Evaluate.
type Record struct {
	Post *jobpost.JobPost
}

// Field implements predicate.Record.
func (r Record) Field(name string) (any, bool) {
	p := r.Post
	switch name {
	case "id":
		return p.ID.String(), true
	case "title":
		return p.Title, true
	case "description":
		return p.Description, true
	case "company_name":
		return p.CompanyName, true
	case "salary_min":
		return p.SalaryMin, true
	case "salary_max":
		return p.SalaryMax, true
	case "is_remote":
		return p.IsRemote, true
	case "job_type":
		return string(p.JobType), true
	case "status":
		return string(p.Status), true
	case "published_at":
		if p.PublishedAt == nil {
			return nil, true
		}
		return *p.PublishedAt, true
	case "created_at":
		return p.CreatedAt, true
	case "updated_at":
		return p.UpdatedAt, true
	}
	return nil, false
}

// Relation implements predicate.Record.
func (r Record) Relation(name string) []id.ID {
	var ids []id.ID
	switch name {
	case jobpost.RelationLanguages:
		for _, l := range r.Post.Languages {
			ids = append(ids, l.ID)
		}
	case jobpost.RelationLocations:
		for _, l := range r.Post.Locations {
			ids = append(ids, l.ID)
		}
	case jobpost.RelationCategories:
		for _, c := range r.Post.Categories {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// AttributeValues implements predicate.Record.
func (r Record) AttributeValues(attributeID id.ID) []string {
	var out []string
	for _, v := range r.Post.Attributes {
		if v.AttributeID == attributeID {
			out = append(out, v.Value)
		}
	}
	return out
}
