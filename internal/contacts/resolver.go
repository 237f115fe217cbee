package contacts

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/stringutil"
)

// DefaultAliases maps lower-case country spellings to table names.
func DefaultAliases() map[string]string {
	return map[string]string{
		"korea":                    "South Korea",
		"south korea":              "South Korea",
		"republic of korea":        "South Korea",
		"usa":                      "United States",
		"us":                       "United States",
		"u.s.":                     "United States",
		"u.s.a.":                   "United States",
		"america":                  "United States",
		"united states of america": "United States",
		"uk":                       "United Kingdom",
		"u.k.":                     "United Kingdom",
		"britain":                  "United Kingdom",
		"great britain":            "United Kingdom",
		"england":                  "United Kingdom",
	}
}

// MatchKind says how a query was resolved.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
	MatchNone  MatchKind = "none"
)

// Query is a normalized (country, city, category) triple.
type Query struct {
	Country  string
	City     string
	Category Category
}

// Resolution is the detailed result of a lookup.
type Resolution struct {
	Query   Query
	Country string // matched table country, empty on MatchNone
	City    string // matched table city, empty on MatchNone
	Match   MatchKind
	Records []Record
}

// Label renders the location for display, preferring the matched names.
func (r Resolution) Label() string {
	if r.Match == MatchNone {
		return r.Query.City + ", " + r.Query.Country
	}
	return r.City + ", " + r.Country
}

// Resolver answers contact queries against an immutable Table.
type Resolver struct {
	table   *Table
	aliases map[string]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAliases replaces the country alias table. Keys are matched lower-case.
func WithAliases(aliases map[string]string) Option {
	return func(r *Resolver) {
		r.aliases = make(map[string]string, len(aliases))
		for k, v := range aliases {
			r.aliases[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
}

// NewResolver creates a resolver using DefaultAliases unless overridden.
func NewResolver(table *Table, opts ...Option) *Resolver {
	r := &Resolver{table: table, aliases: DefaultAliases()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the underlying table.
func (r *Resolver) Table() *Table {
	return r.table
}

// Normalize trims and title-cases country and city, applies the country
// alias table, and lower-cases the category.
func (r *Resolver) Normalize(countryName, cityName, category string) Query {
	// Casers carry state and must not be shared across goroutines.
	title := cases.Title(language.English)

	c := stringutil.CollapseSpace(countryName)
	if alias, ok := r.aliases[strings.ToLower(c)]; ok {
		c = alias
	} else {
		c = title.String(c)
	}
	return Query{
		Country:  c,
		City:     title.String(stringutil.CollapseSpace(cityName)),
		Category: Category(strings.ToLower(strings.TrimSpace(category))),
	}
}

// Resolve returns the contacts for a location and category. A miss is an
// empty list, not an error. Only blank inputs are rejected.
func (r *Resolver) Resolve(countryName, cityName, category string) ([]Record, error) {
	res, err := r.Lookup(countryName, cityName, category)
	return res.Records, err
}

// Lookup is Resolve with match details.
func (r *Resolver) Lookup(countryName, cityName, category string) (Resolution, error) {
	q := r.Normalize(countryName, cityName, category)
	if err := validateQuery(q); err != nil {
		return Resolution{Query: q, Match: MatchNone, Records: []Record{}}, err
	}

	if list, ok := r.table.lookup(q.Country, q.City, q.Category); ok {
		return Resolution{
			Query:   q,
			Country: q.Country,
			City:    q.City,
			Match:   MatchExact,
			Records: annotate(list, q.Country, q.City, q.Category),
		}, nil
	}

	for _, countryName := range r.table.sorted {
		if !stringutil.ContainsEitherFold(countryName, q.Country) {
			continue
		}
		co := r.table.countries[countryName]
		for _, cityName := range co.sorted {
			if !stringutil.ContainsEitherFold(cityName, q.City) {
				continue
			}
			list := co.cities[cityName].categories[q.Category]
			return Resolution{
				Query:   q,
				Country: countryName,
				City:    cityName,
				Match:   MatchFuzzy,
				Records: annotate(list, countryName, cityName, q.Category),
			}, nil
		}
	}

	return Resolution{Query: q, Match: MatchNone, Records: []Record{}}, nil
}

func validateQuery(q Query) error {
	if err := domerrors.Required("country", q.Country); err != nil {
		return err
	}
	if err := domerrors.Required("city", q.City); err != nil {
		return err
	}
	return domerrors.Required("category", string(q.Category))
}

// Search scans every contact for query in its name, number, or location,
// ignoring case. A non-blank category restricts the scan. Results come in
// table order: country, then city, then category display order.
func (r *Resolver) Search(query, category string) ([]Record, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, domerrors.NewValidationError("query", "is required")
	}

	var only Category
	if strings.TrimSpace(category) != "" {
		only = Category(strings.ToLower(strings.TrimSpace(category)))
	}

	hits := []Record{}
	for _, countryName := range r.table.sorted {
		co := r.table.countries[countryName]
		for _, cityName := range co.sorted {
			ci := co.cities[cityName]
			location := cityName + ", " + countryName
			for _, cat := range Categories() {
				if only != "" && cat != only {
					continue
				}
				for _, c := range ci.categories[cat] {
					if stringutil.ContainsFold(c.Name, q) ||
						stringutil.ContainsFold(c.Number, q) ||
						stringutil.ContainsFold(location, q) {
						hits = append(hits, Record{Contact: c, Country: countryName, City: cityName, Category: cat})
					}
				}
			}
		}
	}
	return hits, nil
}

// Countries returns every country, sorted.
func (r *Resolver) Countries() []string {
	return r.table.Countries()
}

// Cities returns the sorted cities of a country after alias and case
// normalization, or an empty list.
func (r *Resolver) Cities(countryName string) []string {
	return r.table.Cities(r.Normalize(countryName, "", "").Country)
}
