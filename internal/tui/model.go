// Package tui is a terminal front end for a sources page.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mathieu-neron/vidsource/internal/model"
	"github.com/mathieu-neron/vidsource/internal/page"
)

var (
	docStyle = lipgloss.NewStyle().
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700"))

	chipStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			Foreground(lipgloss.Color("#374151")).
			Background(lipgloss.Color("#E5E7EB"))

	activeChipStyle = chipStyle.
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#3B82F6"))

	placeholderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#4B5563")).
				Foreground(lipgloss.Color("#4B5563")).
				Width(14).
				MarginRight(1)

	cardTypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#874BFD"))

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{
			Light: "#626262",
			Dark:  "#DDD",
		})
)

// placeholderCell fills a skeleton card while a fetch is in flight.
const placeholderCell = "░░░░░░░░░░░░"

const helpText = "←/→: source • tab/shift+tab: category • q: quit"

// initializedMsg carries the first fetch after the source list is loaded.
type initializedMsg struct{ fetch *page.Fetch }

// fetchDoneMsg reports that a fetch settled. The page already holds the result.
type fetchDoneMsg struct{ seq uint64 }

type Model struct {
	ctx          context.Context
	page         *page.Page
	lister       page.SourceLister
	fetchTimeout time.Duration
	spinner      spinner.Model
	width        int
	height       int
}

// New returns a model driving p. Sources are loaded from lister on Init.
func New(ctx context.Context, p *page.Page, lister page.SourceLister, fetchTimeout time.Duration) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))

	return &Model{
		ctx:          ctx,
		page:         p,
		lister:       lister,
		fetchTimeout: fetchTimeout,
		spinner:      s,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initialize())
}

func (m *Model) initialize() tea.Cmd {
	return func() tea.Msg {
		return initializedMsg{fetch: m.page.Initialize(m.ctx, m.lister)}
	}
}

// run executes f off the update loop.
func (m *Model) run(f *page.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := m.ctx
		if m.fetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.fetchTimeout)
			defer cancel()
		}
		m.page.Run(ctx, f)
		return fetchDoneMsg{seq: f.Seq}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case initializedMsg:
		return m, m.run(msg.fetch)

	case fetchDoneMsg:
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "right", "l":
			return m, m.stepSource(1)
		case "left", "h":
			return m, m.stepSource(-1)
		case "tab":
			return m, m.stepCategory(1)
		case "shift+tab":
			return m, m.stepCategory(-1)
		}
	}
	return m, nil
}

func (m *Model) stepSource(delta int) tea.Cmd {
	view := m.page.View()
	if len(view.Sources) == 0 {
		return nil
	}
	i := 0
	for j, s := range view.Sources {
		if s.Active {
			i = j
		}
	}
	next := view.Sources[wrap(i+delta, len(view.Sources))]
	f, err := m.page.SelectSource(next.Key)
	if err != nil {
		return nil
	}
	return m.run(f)
}

func (m *Model) stepCategory(delta int) tea.Cmd {
	view := m.page.View()
	if len(view.Categories) == 0 {
		return nil
	}
	i := -1
	for j, c := range view.Categories {
		if c.Active {
			i = j
		}
	}
	if i < 0 && delta < 0 {
		i = 0
	}
	next := view.Categories[wrap(i+delta, len(view.Categories))]
	f, err := m.page.SelectCategory(next.Key)
	if err != nil {
		return nil
	}
	return m.run(f)
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

func (m *Model) View() string {
	view := m.page.View()

	var s strings.Builder
	s.WriteString(titleStyle.Render("视频源"))
	s.WriteString("\n\n")

	chips := make([]string, 0, len(view.Categories))
	for _, c := range view.Categories {
		chips = append(chips, chip(c.Label, c.Active))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	s.WriteString("\n\n")

	chips = chips[:0]
	for _, src := range view.Sources {
		label := src.Name
		if src.Detail != "" {
			label += " (" + src.Detail + ")"
		}
		chips = append(chips, chip(label, src.Active))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	s.WriteString("\n\n")

	if v := view.Videos; v != nil {
		s.WriteString(titleStyle.Render(fmt.Sprintf("%s - %s视频", v.SourceName, v.Category)))
		s.WriteString("\n\n")
		s.WriteString(m.videos(v))
		s.WriteString("\n")
	}

	s.WriteString(statusMessageStyle.Render(helpText))
	return docStyle.Render(s.String())
}

func (m *Model) videos(v *model.VideoSection) string {
	switch v.State {
	case model.StateLoading:
		cells := make([]string, v.Placeholders)
		for i := range cells {
			cells[i] = placeholderStyle.Render(placeholderCell)
		}
		rows := []string{m.spinner.View()}
		for i := 0; i < len(cells); i += 4 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:min(i+4, len(cells))]...))
		}
		return lipgloss.JoinVertical(lipgloss.Left, rows...)

	case model.StateResults:
		var b strings.Builder
		for _, c := range v.Cards {
			b.WriteString(c.Title)
			if c.Year != "" {
				b.WriteString(" (" + c.Year + ")")
			}
			b.WriteString("  " + c.SourceName + "  ")
			if c.Type == model.CardTypeTV {
				b.WriteString(cardTypeStyle.Render(fmt.Sprintf("[%s %d集]", c.Type, c.Episodes)))
			} else {
				b.WriteString(cardTypeStyle.Render("[" + c.Type + "]"))
			}
			b.WriteString("\n")
		}
		return b.String()

	default:
		return statusMessageStyle.Render(v.EmptyText) + "\n"
	}
}

func chip(label string, active bool) string {
	if active {
		return activeChipStyle.Render(label)
	}
	return chipStyle.Render(label)
}
