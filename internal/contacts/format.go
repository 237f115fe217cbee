package contacts

import (
	"fmt"
	"strings"
)

type categoryStyle struct {
	icon  string
	label string
}

var categoryStyles = map[Category]categoryStyle{
	Helplines:        {"📞", "Helplines"},
	Doctors:          {"🩺", "Doctors & Clinics"},
	DomesticViolence: {"🏠", "Domestic Violence Support"},
	SubstanceAbuse:   {"💊", "Substance Abuse Support"},
}

const globalResources = "---\n\n" +
	"### 🌍 Global Crisis Resources\n\n" +
	"- Find a Helpline (international directory): <https://findahelpline.com>\n" +
	"- International Association for Suicide Prevention: <https://www.iasp.info/resources/Crisis_Centres/>\n" +
	"- Befrienders Worldwide: <https://www.befrienders.org>\n"

// NotFoundMessage is shown when a lookup has no contacts.
func NotFoundMessage(location string) string {
	return fmt.Sprintf("No emergency contacts found for %s. Try searching for a nearby major city.", location)
}

// Format renders records grouped by category, followed by the global
// crisis resources. An empty list renders only the not-found message.
func Format(records []Record, location string) string {
	return render(records, "### Emergency Contacts for "+location+"\n\n", location, false)
}

// FormatSearch is Format for search hits, which may span several
// locations, so each entry carries its own location.
func FormatSearch(records []Record, query string) string {
	return render(records, fmt.Sprintf("### Contacts matching %q\n\n", query), fmt.Sprintf("%q", query), true)
}

func render(records []Record, header, missLabel string, withLocation bool) string {
	if len(records) == 0 {
		return NotFoundMessage(missLabel)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, cat := range Categories() {
		writeGroup(&b, records, cat, withLocation)
	}
	b.WriteString(globalResources)
	return b.String()
}

func writeGroup(b *strings.Builder, records []Record, cat Category, withLocation bool) {
	first := true
	for _, r := range records {
		if r.Category != cat {
			continue
		}
		if first {
			style := categoryStyles[cat]
			fmt.Fprintf(b, "#### %s %s\n\n", style.icon, style.label)
			first = false
		}
		fmt.Fprintf(b, "**%s**", r.Name)
		if withLocation {
			fmt.Fprintf(b, " (%s)", r.Location())
		}
		b.WriteByte('\n')
		if r.Number != "" {
			fmt.Fprintf(b, "- Phone: `%s`\n", r.Number)
		}
		if r.URL != "" {
			fmt.Fprintf(b, "- Website: <%s>\n", r.URL)
		}
		b.WriteByte('\n')
	}
}
