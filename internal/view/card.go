package view

import (
	"strings"

	"github.com/Sternrassler/catalog-loader/pkg/catalog"
)

// DefaultImage is shown for entries without a sprite.
const DefaultImage = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/132.png"

// CardImage returns the entry image, or DefaultImage when it has none.
func CardImage(e catalog.EntitySummary) string {
	if e.Image == "" {
		return DefaultImage
	}
	return e.Image
}

// Card renders one entry.
func Card(s Styles, e catalog.EntitySummary) string {
	lines := []string{
		s.CardName.Render(e.Name),
		s.CardLabel.Render("Type: " + e.Type),
		s.CardImage.Render(CardImage(e)),
	}
	return s.Card.Render(strings.Join(lines, "\n"))
}
