// Package candidate holds the structured researcher profile and the
// deterministic extractor that fills it when no model is available.
package candidate

import "strings"

// Placeholder values for fields no extraction step could fill.
const (
	UnknownName  = "Unknown"
	NotAvailable = "N/A"
)

// Profile is the structured view of one researcher. Field names on the wire
// match the keys the extraction prompt asks the model to produce.
type Profile struct {
	Name             string        `json:"name"`
	Institution      string        `json:"current_institution"`
	Ranking          string        `json:"estimated_ranking"`
	Education        string        `json:"education,omitempty"`
	HIndex           string        `json:"h_index"`
	PublicationCount int           `json:"publication_count,omitempty"`
	Interests        []string      `json:"research_focus_keywords"`
	Skills           []string      `json:"skills"`
	Publications     []Publication `json:"key_publications"`
	Grants           []Grant       `json:"grants"`
	Emails           []string      `json:"emails,omitempty"`
	Notes            string        `json:"notes,omitempty"`
}

type Publication struct {
	Title   string `json:"title"`
	Journal string `json:"journal"`
	Year    string `json:"year,omitempty"`
}

type Grant struct {
	Title   string `json:"title"`
	Amount  string `json:"amount,omitempty"`
	Year    string `json:"year,omitempty"`
	Sponsor string `json:"sponsor,omitempty"`
}

// NewProfile returns a profile carrying only placeholder values.
func NewProfile() *Profile {
	return &Profile{
		Name:        UnknownName,
		Institution: NotAvailable,
		Ranking:     NotAvailable,
		HIndex:      NotAvailable,
	}
}

// Row is one line of the candidate overview table.
type Row struct {
	Name         string `json:"name"`
	Institution  string `json:"institution"`
	HIndex       string `json:"h_index"`
	Focus        string `json:"focus"`
	Publications int    `json:"publications"`
}

// Summary flattens the profile into an overview table row.
func (p *Profile) Summary() Row {
	return Row{
		Name:         p.Name,
		Institution:  p.Institution,
		HIndex:       p.HIndex,
		Focus:        strings.Join(p.Interests, ", "),
		Publications: len(p.Publications),
	}
}
