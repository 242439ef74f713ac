// Package tui is the terminal front-end: the play loop, the wheel animation and the setup wizard.
package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/roulette/internal/domain"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	danger    = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5C70"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(subtle).
			Padding(0, 1)

	redPocket   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#B3202A")).Padding(0, 1)
	blackPocket = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1A1A1A")).Padding(0, 1)
	greenPocket = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1B7F3A")).Padding(0, 1)
	ballStyle   = lipgloss.NewStyle().Bold(true).Underline(true)

	noticeStyles = map[domain.NoticeKind]lipgloss.Style{
		domain.NoticeInfo:  lipgloss.NewStyle().Foreground(highlight),
		domain.NoticeWin:   lipgloss.NewStyle().Foreground(special).Bold(true),
		domain.NoticeLose:  lipgloss.NewStyle().Foreground(danger),
		domain.NoticeError: lipgloss.NewStyle().Foreground(danger).Bold(true),
	}
)

func clearScreen(out io.Writer) {
	fmt.Fprint(out, "\033[H\033[2J")
}

func pocket(n int) string {
	label := fmt.Sprintf("%2d", n)
	switch {
	case n == 0:
		return greenPocket.Render(label)
	case domain.IsRed(n):
		return redPocket.Render(label)
	default:
		return blackPocket.Render(label)
	}
}
