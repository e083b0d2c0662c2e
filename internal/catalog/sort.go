package catalog

import (
	"sort"

	"github.com/maruel/natural"
)

// Sort method identifiers, stored in the config file.
const (
	SortNatural = iota
	SortSimple
	SortEntryOrder
)

// SortStrategy orders discovered page entries and library entries.
type SortStrategy interface {
	// Sort returns a sorted copy of names.
	Sort(names []string) []string
	// Name is the human-readable name.
	Name() string
	// ID is the config identifier.
	ID() int
}

// NaturalSort orders "page2" before "page10".
type NaturalSort struct{}

func (NaturalSort) Sort(names []string) []string {
	out := append([]string{}, names...)
	sort.SliceStable(out, func(i, j int) bool {
		return natural.Less(out[i], out[j])
	})
	return out
}

func (NaturalSort) Name() string { return "Natural" }
func (NaturalSort) ID() int      { return SortNatural }

// SimpleSort is plain byte-wise ordering.
type SimpleSort struct{}

func (SimpleSort) Sort(names []string) []string {
	out := append([]string{}, names...)
	sort.Strings(out)
	return out
}

func (SimpleSort) Name() string { return "Simple" }
func (SimpleSort) ID() int      { return SortSimple }

// EntryOrderSort keeps the order the directory or archive listed.
type EntryOrderSort struct{}

func (EntryOrderSort) Sort(names []string) []string {
	return append([]string{}, names...)
}

func (EntryOrderSort) Name() string { return "Entry Order" }
func (EntryOrderSort) ID() int      { return SortEntryOrder }

// GetSortStrategy returns the strategy for id, natural when unknown.
func GetSortStrategy(id int) SortStrategy {
	switch id {
	case SortSimple:
		return SimpleSort{}
	case SortEntryOrder:
		return EntryOrderSort{}
	default:
		return NaturalSort{}
	}
}

// AllSortStrategies lists every strategy in ID order.
func AllSortStrategies() []SortStrategy {
	return []SortStrategy{NaturalSort{}, SimpleSort{}, EntryOrderSort{}}
}
