package catalog

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/catalog-loader/pkg/client"
)

// TypeSeparator joins category names in EntitySummary.Type.
const TypeSeparator = ", "

// Detail is the subset of a detail document the loader reads.
type Detail struct {
	Sprites *Sprites `json:"sprites"`

	// pointer so that a missing or null "types" is distinguishable from []
	Types *[]TypeSlot `json:"types"`
}

// Sprites holds image URLs; FrontDefault may be null.
type Sprites struct {
	FrontDefault *string `json:"front_default"`
}

// TypeSlot is one category record of a detail document.
type TypeSlot struct {
	Slot int            `json:"slot"`
	Type *NamedResource `json:"type"`
}

// NamedResource is a {name, url} reference.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type indexDocument struct {
	// pointer so that a missing or null "results" is distinguishable from []
	Results *[]IndexEntry `json:"results"`
}

// Normalize builds the summary for entry from its detail document.
// A document without a types list, or with a type record that has no name,
// is malformed and yields an error wrapping client.ErrMalformedPayload.
// Missing sprites only leave Image empty.
func Normalize(entry IndexEntry, detail Detail) (EntitySummary, error) {
	if detail.Types == nil {
		return EntitySummary{}, fmt.Errorf("%w: detail document has no types", client.ErrMalformedPayload)
	}
	for i, s := range *detail.Types {
		if s.Type == nil || s.Type.Name == "" {
			return EntitySummary{}, fmt.Errorf("%w: type record %d has no name", client.ErrMalformedPayload, i)
		}
	}

	return EntitySummary{
		Name:  entry.Name,
		Type:  JoinTypes(*detail.Types),
		Image: detail.image(),
	}, nil
}

// JoinTypes joins category names in source order. No slots yields "".
// Records without a type are skipped.
func JoinTypes(slots []TypeSlot) string {
	names := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Type == nil {
			continue
		}
		names = append(names, s.Type.Name)
	}
	return strings.Join(names, TypeSeparator)
}

func (d Detail) image() string {
	if d.Sprites == nil || d.Sprites.FrontDefault == nil {
		return ""
	}
	return *d.Sprites.FrontDefault
}
