package analysis

import "strings"

// Section is a bit set of gateway records to fetch for a context
type Section uint16

const (
	SectionQuote Section = 1 << iota
	SectionFundamentals
	SectionProfile
	SectionPerformance
	SectionNews
	SectionSentiment
	SectionOwnership
	SectionCandles
	SectionNotes
)

// Presets used by the command handlers
const (
	SectionsSnapshot = SectionQuote | SectionFundamentals | SectionProfile | SectionPerformance
	SectionsAnalysis = SectionsSnapshot | SectionNews | SectionSentiment | SectionOwnership | SectionNotes
	SectionsWhy      = SectionQuote | SectionProfile | SectionPerformance | SectionNews
	SectionsAsk      = SectionQuote | SectionFundamentals | SectionProfile | SectionPerformance | SectionNews | SectionNotes
	SectionsCompare  = SectionQuote | SectionFundamentals | SectionProfile
	SectionsScan     = SectionQuote | SectionFundamentals
	SectionsAlert    = SectionQuote
)

var sectionNames = []struct {
	s    Section
	name string
}{
	{SectionQuote, "quote"},
	{SectionFundamentals, "fundamentals"},
	{SectionProfile, "profile"},
	{SectionPerformance, "performance"},
	{SectionNews, "news"},
	{SectionSentiment, "sentiment"},
	{SectionOwnership, "ownership"},
	{SectionCandles, "candles"},
	{SectionNotes, "notes"},
}

// Has reports whether every bit of other is set
func (s Section) Has(other Section) bool {
	return s&other == other
}

// Gateway returns the set without the user-side sections
func (s Section) Gateway() Section {
	return s &^ SectionNotes
}

func (s Section) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	for _, n := range sectionNames {
		if s.Has(n.s) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}
