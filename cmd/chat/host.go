package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"propertybot/internal/models"
	"propertybot/internal/widget"
)

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6b7280")
	danger = lipgloss.Color("#e53935")

	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	botStyle    = lipgloss.NewStyle().Foreground(accent)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(danger)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	priceStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1)
	bannerStyle = lipgloss.NewStyle().Foreground(muted)
)

// terminalHost prints transcript changes as they happen. Removed
// placeholders stay on screen; the reply below them supersedes them.
type terminalHost struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalHost(out io.Writer) *terminalHost {
	return &terminalHost{out: out}
}

func (h *terminalHost) SetPanelVisible(visible bool) {
	if visible {
		h.println(bannerStyle.Render("── chat open · /close to hide · /quit to exit ──"))
	} else {
		h.println(bannerStyle.Render("── chat closed · /open to resume ──"))
	}
}

func (h *terminalHost) FocusInput() {}

func (h *terminalHost) ClearInput() {}

func (h *terminalHost) EntryAppended(e widget.Entry) {
	h.println(formatEntry(e))
}

func (h *terminalHost) EntryRemoved(widget.EntryID) {}

func (h *terminalHost) println(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintln(h.out, s)
}

// sanitize removes escape sequences and any remaining control characters
// from text that did not originate in this process.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(s))
}

func formatEntry(e widget.Entry) string {
	text := sanitize(e.Message.Text)
	switch e.Kind {
	case widget.KindUser:
		return userStyle.Render("you ›") + " " + text
	case widget.KindPlaceholder:
		return mutedStyle.Render(text)
	case widget.KindCard:
		return formatCard(*e.Card)
	default:
		if e.Message.Text == widget.ErrorText {
			return errorStyle.Render(text)
		}
		return botStyle.Render("bot ›") + " " + text
	}
}

func formatCard(p models.PropertyResult) string {
	lines := []string{
		titleStyle.Render(sanitize(p.Title)),
		priceStyle.Render(widget.FormatPrice(p.Price)) + " · " + sanitize(p.Location),
	}

	var facts []string
	if p.Bedrooms > 0 {
		facts = append(facts, fmt.Sprintf("%d bd", p.Bedrooms))
	}
	if p.Bathrooms > 0 {
		facts = append(facts, fmt.Sprintf("%d ba", p.Bathrooms))
	}
	if p.AreaSqm > 0 {
		facts = append(facts, widget.FormatNumber(p.AreaSqm)+" m²")
	}
	if len(facts) > 0 {
		lines = append(lines, mutedStyle.Render(strings.Join(facts, " · ")))
	}
	if p.ImageURL != "" {
		lines = append(lines, mutedStyle.Render(sanitize(p.ImageURL)))
	}

	return cardStyle.Render(strings.Join(lines, "\n"))
}
