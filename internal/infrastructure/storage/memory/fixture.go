package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"jobboard/internal/domain/jobpost"
)

// Fixture is the JSON document the store and the seeder load.
type Fixture struct {
	Attributes []jobpost.Attribute `json:"attributes"`
	Languages  []string            `json:"languages"`
	Locations  []FixtureLocation   `json:"locations"`
	Categories []string            `json:"categories"`
	JobPosts   []FixturePost       `json:"job_posts"`
}

// FixtureLocation is a location entry.
type FixtureLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// FixturePost is a job post entry. Relations refer to entities by name and
// locations by city.
type FixturePost struct {
	Key         string            `json:"key"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	CompanyName string            `json:"company_name"`
	SalaryMin   decimal.Decimal   `json:"salary_min"`
	SalaryMax   decimal.Decimal   `json:"salary_max"`
	IsRemote    bool              `json:"is_remote"`
	JobType     jobpost.JobType   `json:"job_type"`
	Status      jobpost.Status    `json:"status"`
	PublishedAt *time.Time        `json:"published_at"`
	Languages   []string          `json:"languages"`
	Locations   []string          `json:"locations"`
	Categories  []string          `json:"categories"`
	Attributes  map[string]string `json:"attributes"`
}

// DecodeFixture reads a fixture document.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Load adds the fixture to the store and returns the created posts keyed by
// their fixture key (or title when the key is empty).
func (s *Store) Load(f *Fixture) (map[string]jobpost.JobPost, error) {
	for _, a := range f.Attributes {
		if !a.Type.Valid() {
			return nil, fmt.Errorf("attribute %q: unknown type %q", a.Name, a.Type)
		}
		s.AddAttribute(a)
	}
	for _, name := range f.Languages {
		s.AddLanguage(name)
	}
	for _, name := range f.Categories {
		s.AddCategory(name)
	}
	cities := make(map[string]jobpost.Location)
	for _, l := range f.Locations {
		cities[l.City] = s.AddLocation(l.City, l.State, l.Country)
	}

	created := make(map[string]jobpost.JobPost, len(f.JobPosts))
	for i, fp := range f.JobPosts {
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		post := jobpost.JobPost{
			Title:       fp.Title,
			Description: fp.Description,
			CompanyName: fp.CompanyName,
			SalaryMin:   fp.SalaryMin,
			SalaryMax:   fp.SalaryMax,
			IsRemote:    fp.IsRemote,
			JobType:     fp.JobType,
			Status:      fp.Status,
			PublishedAt: fp.PublishedAt,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		post.UpdatedAt = post.CreatedAt
		if post.Status == "" {
			post.Status = jobpost.StatusDraft
		}
		for _, name := range fp.Languages {
			post.Languages = append(post.Languages, s.AddLanguage(name))
		}
		for _, name := range fp.Categories {
			post.Categories = append(post.Categories, s.AddCategory(name))
		}
		for _, city := range fp.Locations {
			loc, ok := cities[city]
			if !ok {
				return nil, fmt.Errorf("job post %q: unknown location %q", fp.Title, city)
			}
			post.Locations = append(post.Locations, loc)
		}
		for name, value := range fp.Attributes {
			post.Attributes = append(post.Attributes, jobpost.AttributeValue{Name: name, Value: value})
		}

		key := fp.Key
		if key == "" {
			key = fp.Title
		}
		created[key] = s.AddPost(post)
	}
	return created, nil
}

// LoadFixture decodes a fixture into a new store.
func LoadFixture(r io.Reader) (*Store, map[string]jobpost.JobPost, error) {
	f, err := DecodeFixture(r)
	if err != nil {
		return nil, nil, err
	}
	s := New()
	posts, err := s.Load(f)
	if err != nil {
		return nil, nil, err
	}
	return s, posts, nil
}
