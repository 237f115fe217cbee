package contacts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(RawTable{
		"South Korea": {
			"Seoul": {
				"helplines": {
					{Name: "Suicide Prevention Hotline", Number: "109"},
					{Name: "Korea Lifeline", Number: "1588-9191", URL: "https://www.lifeline.or.kr"},
				},
				"doctors": {
					{Name: "Seoul National University Hospital", Number: "02-2072-2114"},
				},
			},
			"Busan": {
				"helplines": {
					{Name: "Busan Mental Health Crisis Line", Number: "1577-0199"},
				},
			},
		},
		"United States": {
			"New York": {
				"helplines": {
					{Name: "988 Suicide & Crisis Lifeline", Number: "988", URL: "https://988lifeline.org"},
				},
				"domestic_violence": {
					{Name: "National Domestic Violence Hotline", Number: "1-800-799-7233"},
				},
				"substance_abuse": {},
			},
		},
		"United Kingdom": {
			"London": {
				"helplines": {
					{Name: "Samaritans", Number: "116 123"},
					{Name: "Hub of Hope", URL: "https://hubofhope.co.uk"},
				},
			},
		},
	})
	require.NoError(t, err)
	return table
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestNewTable_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  RawTable
	}{
		{"blank country", RawTable{" ": {"Seoul": {}}}},
		{"blank city", RawTable{"Japan": {"": {}}}},
		{"unknown category", RawTable{"Japan": {"Tokyo": {"lawyers": {{Name: "x"}}}}}},
		{"nameless contact", RawTable{"Japan": {"Tokyo": {"helplines": {{Number: "110"}}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewTable(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestTable_Listing(t *testing.T) {
	t.Parallel()
	table := testTable(t)

	assert.Equal(t, []string{"South Korea", "United Kingdom", "United States"}, table.Countries())
	assert.Equal(t, []string{"Busan", "Seoul"}, table.Cities("South Korea"))
	assert.Empty(t, table.Cities("Atlantis"))
	assert.NotNil(t, table.Cities("Atlantis"))
	assert.Equal(t, 8, table.Size())
}

func TestResolver_Normalize(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t))

	tests := []struct {
		country, city, category string
		want                    Query
	}{
		{"korea", "seoul", "Helplines", Query{"South Korea", "Seoul", Helplines}},
		{"  USA ", "new   york", " DOCTORS ", Query{"United States", "New York", Doctors}},
		{"uk", "LONDON", "helplines", Query{"United Kingdom", "London", Helplines}},
		{"south korea", "busan", "helplines", Query{"South Korea", "Busan", Helplines}},
		{"new zealand", "auckland", "helplines", Query{"New Zealand", "Auckland", Helplines}},
	}

	for _, tt := range tests {
		t.Run(tt.country+"/"+tt.city, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.Normalize(tt.country, tt.city, tt.category))
		})
	}
}

func TestResolver_AliasMatchesCanonical(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t))

	viaAlias, err := r.Resolve("korea", "seoul", "helplines")
	require.NoError(t, err)
	canonical, err := r.Resolve("South Korea", "Seoul", "helplines")
	require.NoError(t, err)

	assert.Equal(t, canonical, viaAlias)
	assert.Equal(t, []string{"Suicide Prevention Hotline", "Korea Lifeline"}, names(viaAlias))
	for _, rec := range viaAlias {
		assert.Equal(t, "Seoul, South Korea", rec.Location())
		assert.Equal(t, Helplines, rec.Category)
	}
}

func TestResolver_Lookup(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t))

	tests := []struct {
		name        string
		country     string
		city        string
		category    string
		wantMatch   MatchKind
		wantCity    string
		wantRecords []string
	}{
		{
			name:        "exact",
			country:     "United States", city: "New York", category: "helplines",
			wantMatch:   MatchExact,
			wantCity:    "New York",
			wantRecords: []string{"988 Suicide & Crisis Lifeline"},
		},
		{
			name:        "exact with empty category list",
			country:     "usa", city: "new york", category: "substance_abuse",
			wantMatch:   MatchExact,
			wantCity:    "New York",
			wantRecords: []string{},
		},
		{
			name:        "misspelled city contains table city",
			country:     "Korea", city: "Busann", category: "helplines",
			wantMatch:   MatchFuzzy,
			wantCity:    "Busan",
			wantRecords: []string{"Busan Mental Health Crisis Line"},
		},
		{
			name:        "partial country and city",
			country:     "Korea, South", city: "Seo", category: "doctors",
			wantMatch:   MatchNone,
			wantRecords: []string{},
		},
		{
			name:        "partial country contained in table country",
			country:     "Kingdom", city: "Lond", category: "helplines",
			wantMatch:   MatchFuzzy,
			wantCity:    "London",
			wantRecords: []string{"Samaritans", "Hub of Hope"},
		},
		{
			name:        "fuzzy city without category",
			country:     "Korea", city: "Busan City", category: "doctors",
			wantMatch:   MatchFuzzy,
			wantCity:    "Busan",
			wantRecords: []string{},
		},
		{
			name:        "unknown location",
			country:     "Nowhereland", city: "Nowhere", category: "helplines",
			wantMatch:   MatchNone,
			wantRecords: []string{},
		},
		{
			name:        "unknown category",
			country:     "South Korea", city: "Seoul", category: "lawyers",
			wantMatch:   MatchFuzzy,
			wantCity:    "Seoul",
			wantRecords: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := r.Lookup(tt.country, tt.city, tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, res.Match)
			assert.Equal(t, tt.wantCity, res.City)
			assert.NotNil(t, res.Records)
			assert.Equal(t, tt.wantRecords, names(res.Records))
		})
	}
}

func TestResolver_RequiredFields(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t))

	for _, args := range [][3]string{
		{"", "Seoul", "helplines"},
		{"Korea", "  ", "helplines"},
		{"Korea", "Seoul", ""},
	} {
		_, err := r.Resolve(args[0], args[1], args[2])
		require.Error(t, err, args)
		assert.True(t, domerrors.IsInvalidInput(err))
	}
}

func TestResolver_CustomAliases(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t), WithAliases(map[string]string{"ROK": "South Korea"}))

	res, err := r.Lookup("rok", "seoul", "doctors")
	require.NoError(t, err)
	assert.Equal(t, MatchExact, res.Match)

	// Default aliases are replaced, not merged.
	assert.Equal(t, "Usa", r.Normalize("usa", "", "").Country)
}

func TestResolver_Search(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t))

	tests := []struct {
		name     string
		query    string
		category string
		want     []string
	}{
		{"by name", "samaritans", "", []string{"Samaritans"}},
		{"by number", "988", "", []string{"988 Suicide & Crisis Lifeline"}},
		{"by city", "busan", "", []string{"Busan Mental Health Crisis Line"}},
		{"by country in table order", "korea", "", []string{
			"Busan Mental Health Crisis Line",
			"Suicide Prevention Hotline", "Korea Lifeline",
			"Seoul National University Hospital",
		}},
		{"category filter", "korea", "Doctors", []string{"Seoul National University Hospital"}},
		{"hotline across countries", "hotline", "", []string{
			"Suicide Prevention Hotline",
			"National Domestic Violence Hotline",
		}},
		{"no hits", "zzz", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Search(tt.query, tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	t.Run("annotations", func(t *testing.T) {
		t.Parallel()
		got, err := r.Search("Samaritans", "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "London, United Kingdom", got[0].Location())
		assert.Equal(t, Helplines, got[0].Category)
	})

	t.Run("blank query", func(t *testing.T) {
		t.Parallel()
		_, err := r.Search("  ", "")
		assert.True(t, domerrors.IsInvalidInput(err))
	})
}

func TestResolver_Cities(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t))

	assert.Equal(t, []string{"Busan", "Seoul"}, r.Cities("korea"))
	assert.Equal(t, []string{"London"}, r.Cities("united kingdom"))
	assert.Empty(t, r.Cities("Mars"))
	assert.Equal(t, []string{"South Korea", "United Kingdom", "United States"}, r.Countries())
}

func TestFormat(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t))

	t.Run("empty has no global block", func(t *testing.T) {
		t.Parallel()
		out := Format(nil, "Nowhere, Nowhereland")
		assert.Contains(t, out, "No emergency contacts found for Nowhere, Nowhereland")
		assert.Contains(t, out, "nearby major city")
		assert.NotContains(t, out, "Global Crisis Resources")
	})

	t.Run("non-empty has global block", func(t *testing.T) {
		t.Parallel()
		records, err := r.Resolve("uk", "london", "helplines")
		require.NoError(t, err)

		out := Format(records, "London, United Kingdom")
		assert.True(t, strings.HasPrefix(out, "### Emergency Contacts for London, United Kingdom\n\n"))
		assert.Contains(t, out, "#### 📞 Helplines\n\n")
		assert.Contains(t, out, "**Samaritans**\n- Phone: `116 123`\n\n")
		assert.Contains(t, out, "**Hub of Hope**\n- Website: <https://hubofhope.co.uk>\n\n")
		assert.Contains(t, out, "Global Crisis Resources")
		assert.NotContains(t, out, "Doctors & Clinics")
	})

	t.Run("groups follow category order", func(t *testing.T) {
		t.Parallel()
		records := []Record{
			{Contact: Contact{Name: "B"}, Category: Doctors},
			{Contact: Contact{Name: "A"}, Category: Helplines},
		}
		out := Format(records, "X, Y")
		assert.Less(t, strings.Index(out, "Helplines"), strings.Index(out, "Doctors & Clinics"))
	})
}

func TestFormatSearch(t *testing.T) {
	t.Parallel()
	r := NewResolver(testTable(t))

	hits, err := r.Search("hotline", "")
	require.NoError(t, err)

	out := FormatSearch(hits, "hotline")
	assert.Contains(t, out, "**Suicide Prevention Hotline** (Seoul, South Korea)")
	assert.Contains(t, out, "#### 🏠 Domestic Violence Support")
	assert.Contains(t, out, "Global Crisis Resources")

	assert.NotContains(t, FormatSearch(nil, "zzz"), "Global Crisis Resources")
}
