package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sternrassler/catalog-loader/pkg/catalog"
)

const (
	pageTitle   = "Pokédex"
	pageHeading = "Explore the Pokédex!"
	loadingText = "Loading catalog..."
	spinner     = "⠋"
)

// Page owns the theme and the load state shown to the user.
type Page struct {
	theme Theme
	state catalog.LoadState
}

// NewPage returns a page in theme t showing a loading state.
func NewPage(t Theme) *Page {
	return &Page{
		theme: t,
		state: catalog.LoadState{Status: catalog.StatusLoading},
	}
}

// Theme returns the current theme.
func (p *Page) Theme() Theme { return p.theme }

// ToggleTheme switches between light and dark. The load state is untouched.
func (p *Page) ToggleTheme() {
	p.theme = p.theme.Toggle()
}

// State returns the load state being shown.
func (p *Page) State() catalog.LoadState { return p.state }

// SetState replaces the load state being shown.
func (p *Page) SetState(s catalog.LoadState) {
	p.state = s
}

// Render writes the page to w.
func (p *Page) Render(w io.Writer) error {
	s := StylesFor(p.theme)

	var b strings.Builder
	b.WriteString(s.Title.Render(pageTitle))
	b.WriteString("\n")
	b.WriteString(s.Toggle.Render(p.theme.ToggleLabel()))
	b.WriteString("\n")
	b.WriteString(s.Heading.Render(pageHeading))
	b.WriteString("\n\n")

	if p.state.Loading() {
		b.WriteString(s.Spinner.Render(spinner) + " " + loadingText + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	if p.state.Error != "" {
		b.WriteString(s.Error.Render(p.state.Error))
		b.WriteString("\n")
	}
	for _, e := range p.state.Entries {
		b.WriteString(Card(s, e))
		b.WriteString("\n")
	}
	b.WriteString(s.Summary.Render(Summary(p.state)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Summary describes a settled state in one line.
func Summary(st catalog.LoadState) string {
	switch st.Status {
	case catalog.StatusLoading:
		return loadingText
	case catalog.StatusFailed:
		return fmt.Sprintf("Load %s failed", st.ID)
	}
	noun := "entries"
	if len(st.Entries) == 1 {
		noun = "entry"
	}
	return fmt.Sprintf("%s %s loaded (load %s)", humanize.Comma(int64(len(st.Entries))), noun, st.ID)
}
