// Package contacts resolves noisy country, city, and category input to
// emergency contact records and renders them as Markdown.
package contacts

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Category is a contact category key.
type Category string

const (
	Helplines        Category = "helplines"
	Doctors          Category = "doctors"
	DomesticViolence Category = "domestic_violence"
	SubstanceAbuse   Category = "substance_abuse"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{Helplines, Doctors, DomesticViolence, SubstanceAbuse}
}

// ParseCategory normalizes s and reports whether it is a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, slices.Contains(Categories(), c)
}

// Contact is one entry as stored in the reference table. Number and URL
// are empty when the source has none.
type Contact struct {
	Name   string `json:"name"`
	Number string `json:"number,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Record is a contact annotated with where it came from.
type Record struct {
	Contact
	Country  string   `json:"country"`
	City     string   `json:"city"`
	Category Category `json:"category"`
}

// Location renders "City, Country".
func (r Record) Location() string {
	return r.City + ", " + r.Country
}

// RawTable is the decoded nested form: country → city → category → contacts.
type RawTable map[string]map[string]map[string][]Contact

type city struct {
	name       string
	categories map[Category][]Contact
}

type country struct {
	name   string
	cities map[string]*city
	sorted []string // city names, sorted
}

// Table is an immutable, pre-indexed location table.
type Table struct {
	countries map[string]*country
	sorted    []string // country names, sorted
	size      int
}

// NewTable validates raw and copies it into an immutable index.
// Country and city names must be non-blank and categories must be known.
func NewTable(raw RawTable) (*Table, error) {
	t := &Table{countries: make(map[string]*country, len(raw))}

	for countryName, cities := range raw {
		if strings.TrimSpace(countryName) == "" {
			return nil, fmt.Errorf("contacts: blank country name")
		}
		co := &country{name: countryName, cities: make(map[string]*city, len(cities))}

		for cityName, cats := range cities {
			if strings.TrimSpace(cityName) == "" {
				return nil, fmt.Errorf("contacts: blank city name under %q", countryName)
			}
			ci := &city{name: cityName, categories: make(map[Category][]Contact, len(cats))}
			for catName, list := range cats {
				cat, ok := ParseCategory(catName)
				if !ok {
					return nil, fmt.Errorf("contacts: unknown category %q under %s, %s", catName, cityName, countryName)
				}
				for i, c := range list {
					if strings.TrimSpace(c.Name) == "" {
						return nil, fmt.Errorf("contacts: %s/%s/%s[%d] has no name", countryName, cityName, catName, i)
					}
				}
				ci.categories[cat] = slices.Clone(list)
				t.size += len(list)
			}
			co.cities[cityName] = ci
		}
		co.sorted = slices.Sorted(maps.Keys(co.cities))
		t.countries[countryName] = co
	}
	t.sorted = slices.Sorted(maps.Keys(t.countries))
	return t, nil
}

// Countries returns every country name, sorted.
func (t *Table) Countries() []string {
	return slices.Clone(t.sorted)
}

// Cities returns the sorted city names of an exact country, or an empty list.
func (t *Table) Cities(countryName string) []string {
	co, ok := t.countries[countryName]
	if !ok {
		return []string{}
	}
	return slices.Clone(co.sorted)
}

// Size returns the total number of contacts.
func (t *Table) Size() int {
	return t.size
}

func (t *Table) lookup(countryName, cityName string, cat Category) ([]Contact, bool) {
	co, ok := t.countries[countryName]
	if !ok {
		return nil, false
	}
	ci, ok := co.cities[cityName]
	if !ok {
		return nil, false
	}
	list, ok := ci.categories[cat]
	return list, ok
}

func annotate(list []Contact, countryName, cityName string, cat Category) []Record {
	out := make([]Record, len(list))
	for i, c := range list {
		out[i] = Record{Contact: c, Country: countryName, City: cityName, Category: cat}
	}
	return out
}
