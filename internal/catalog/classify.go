package catalog

import "strings"

// Literal markers observed in rendered catalog search pages. The marker text
// is the behavioral contract: classification never inspects page structure.
const (
	markerNoResults = "No results."
	markerBorrow    = "Borrow"
	markerPlaceHold = "Place Hold"
	markerAudio     = "Play Sample"
	markerEbook     = "Read Sample"
)

// Classification is the availability state plus format flags read off one
// rendered page.
type Classification struct {
	Availability Availability
	Audiobook    bool
	Ebook        bool
}

// Classify inspects rendered page text using a fixed-priority marker search.
// "No results." wins over "Borrow", which wins over "Place Hold"; anything
// else is Unknown. The format flags are set independently of which
// availability branch fired.
func Classify(text string) Classification {
	c := Classification{Availability: Unknown}
	switch {
	case strings.Contains(text, markerNoResults):
		c.Availability = NotFound
	case strings.Contains(text, markerBorrow):
		c.Availability = Available
	case strings.Contains(text, markerPlaceHold):
		c.Availability = Owned
	}
	c.Audiobook = strings.Contains(text, markerAudio)
	c.Ebook = strings.Contains(text, markerEbook)
	return c
}
