// Package tui implements the interactive theme browser of adminctl: a
// live list fed by the WatchThemes stream and filtered locally as the
// administrator types.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/service"
)

// DeleteFunc deletes a theme and returns the notice to show.
type DeleteFunc func(key string) (string, error)

type stateMsg struct {
	list adminapi.ThemeList
}

type streamClosedMsg struct{}

type deletedMsg struct {
	key    string
	notice string
	err    error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Browser is the bubbletea model of the theme browser.
type Browser struct {
	keys   KeyMap
	input  textinput.Model
	states <-chan adminapi.ThemeList
	remove DeleteFunc

	themes   []model.Theme
	loaded   bool
	revision int64
	visible  []model.Theme
	cursor   int
	notice   string
	closed   bool

	width  int
	height int
}

// NewBrowser creates a browser over a channel of list states. The states
// are expected to be unfiltered; the browser applies its own query.
func NewBrowser(states <-chan adminapi.ThemeList, remove DeleteFunc) Browser {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "filter by title"
	input.Focus()

	return Browser{
		keys:   DefaultKeyMap,
		input:  input,
		states: states,
		remove: remove,
	}
}

func (b Browser) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForState(b.states))
}

// waitForState blocks until the next list state arrives.
func waitForState(states <-chan adminapi.ThemeList) tea.Cmd {
	return func() tea.Msg {
		list, ok := <-states
		if !ok {
			return streamClosedMsg{}
		}
		return stateMsg{list: list}
	}
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.input.Width = max(msg.Width-4, 10)
		return b, nil

	case stateMsg:
		b.apply(msg.list)
		return b, waitForState(b.states)

	case streamClosedMsg:
		b.closed = true
		b.notice = "Live updates stopped"
		return b, nil

	case deletedMsg:
		if msg.err != nil {
			b.notice = msg.err.Error()
		} else {
			b.notice = msg.notice
		}
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.Clear):
			if b.input.Value() == "" {
				return b, tea.Quit
			}
			b.input.SetValue("")
			b.refilter()
			return b, nil
		case key.Matches(msg, b.keys.Up):
			if b.cursor > 0 {
				b.cursor--
			}
			return b, nil
		case key.Matches(msg, b.keys.Down):
			if b.cursor < len(b.visible)-1 {
				b.cursor++
			}
			return b, nil
		case key.Matches(msg, b.keys.Delete):
			return b, b.deleteSelected()
		}
	}

	var cmd tea.Cmd
	before := b.input.Value()
	b.input, cmd = b.input.Update(msg)
	if b.input.Value() != before {
		b.refilter()
	}
	return b, cmd
}

func (b *Browser) apply(list adminapi.ThemeList) {
	if list.Notice != "" {
		b.notice = list.Notice
	}
	if !list.Loaded {
		return
	}

	themes := make([]model.Theme, 0, len(list.Themes))
	for _, theme := range list.Themes {
		themes = append(themes, model.Theme{
			Key:      theme.Key,
			Title:    theme.Title,
			Theory:   theme.Theory,
			Examples: theme.Examples,
		})
	}
	b.themes = themes
	b.loaded = true
	b.revision = list.Revision
	b.refilter()
}

func (b *Browser) refilter() {
	b.visible = service.FilterThemes(b.themes, b.input.Value())
	if b.cursor >= len(b.visible) {
		b.cursor = max(len(b.visible)-1, 0)
	}
}

// Selected returns the highlighted theme.
func (b Browser) Selected() (model.Theme, bool) {
	if b.cursor < 0 || b.cursor >= len(b.visible) {
		return model.Theme{}, false
	}
	return b.visible[b.cursor], true
}

func (b Browser) deleteSelected() tea.Cmd {
	theme, ok := b.Selected()
	if !ok || b.remove == nil {
		return nil
	}
	remove := b.remove
	return func() tea.Msg {
		notice, err := remove(theme.Key)
		return deletedMsg{key: theme.Key, notice: notice, err: err}
	}
}

func (b Browser) View() string {
	var sb strings.Builder

	header := "Themes"
	if b.loaded {
		header = fmt.Sprintf("Themes  %s", faintStyle.Render(fmt.Sprintf("%d shown, revision %d", len(b.visible), b.revision)))
	}
	if b.closed {
		header += faintStyle.Render("  offline")
	}
	sb.WriteString(titleStyle.Render(header))
	sb.WriteString("\n")
	sb.WriteString(b.input.View())
	sb.WriteString("\n\n")

	switch {
	case !b.loaded:
		sb.WriteString(faintStyle.Render("Loading themes..."))
		sb.WriteString("\n")
	case len(b.visible) == 0:
		sb.WriteString(faintStyle.Render("No themes found"))
		sb.WriteString("\n")
	default:
		offset, rows := b.rows()
		for i, theme := range rows {
			line := "  " + theme.DisplayTitle()
			if offset+i == b.cursor {
				line = selectedStyle.Render("▸ " + theme.DisplayTitle())
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if b.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(noticeStyle.Render(b.notice))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(faintStyle.Render("↑/↓ move • ctrl+d delete • esc clear/quit • ctrl+c quit"))
	return sb.String()
}

// rows returns the window of visible themes that fits the terminal and
// contains the cursor, with the index of its first row.
func (b Browser) rows() (int, []model.Theme) {
	limit := b.height - 8
	if b.height == 0 || limit >= len(b.visible) {
		return 0, b.visible
	}
	limit = max(limit, 1)
	offset := max(b.cursor-limit+1, 0)
	return offset, b.visible[offset : offset+limit]
}
