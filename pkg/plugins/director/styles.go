package director

import "github.com/charmbracelet/lipgloss"

// Palette holds the console reporter's styles. A disabled palette
// renders plain text, which is what --no-color and non-TTY output get.
type Palette struct {
	enabled bool

	bold      lipgloss.Style
	red       lipgloss.Style
	green     lipgloss.Style
	grey      lipgloss.Style
	blue      lipgloss.Style
	yellow    lipgloss.Style
	boldRed   lipgloss.Style
	boldGreen lipgloss.Style
	boldBlue  lipgloss.Style
}

// NewPalette creates a palette; pass false to strip all styling.
func NewPalette(enabled bool) *Palette {
	return &Palette{
		enabled:   enabled,
		bold:      lipgloss.NewStyle().Bold(true),
		red:       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		green:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		grey:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		blue:      lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		yellow:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		boldRed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		boldGreen: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		boldBlue:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
	}
}

func (p *Palette) apply(style lipgloss.Style, s string) string {
	if !p.enabled {
		return s
	}
	return style.Render(s)
}

func (p *Palette) Bold(s string) string      { return p.apply(p.bold, s) }
func (p *Palette) Red(s string) string       { return p.apply(p.red, s) }
func (p *Palette) Green(s string) string     { return p.apply(p.green, s) }
func (p *Palette) Grey(s string) string      { return p.apply(p.grey, s) }
func (p *Palette) Blue(s string) string      { return p.apply(p.blue, s) }
func (p *Palette) Yellow(s string) string    { return p.apply(p.yellow, s) }
func (p *Palette) BoldRed(s string) string   { return p.apply(p.boldRed, s) }
func (p *Palette) BoldGreen(s string) string { return p.apply(p.boldGreen, s) }
func (p *Palette) BoldBlue(s string) string  { return p.apply(p.boldBlue, s) }
