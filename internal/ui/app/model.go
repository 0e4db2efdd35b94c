package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/felixggj/happy-robot-fde/internal/api"
	"github.com/felixggj/happy-robot-fde/internal/dashboard"
	"github.com/felixggj/happy-robot-fde/internal/models"
	"github.com/felixggj/happy-robot-fde/internal/ui/format"
	"github.com/felixggj/happy-robot-fde/internal/ui/theme"
)

type tabID int

const (
	tabMetrics tabID = iota
	tabLoads
	tabCalls
	tabCount
)

var tabLabels = [tabCount]string{"Metrics", "Loads", "Calls"}

var tabResources = [tabCount]string{"metrics", "loads", "call sessions"}

// panelMsg carries a finished fetch back to Update along with the ticket it
// was started under.
type panelMsg[T any] struct {
	ticket dashboard.Ticket
	data   T
	err    error
}

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Jump    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next tab")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev tab")),
		Jump:    key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "jump to tab")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Jump},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Model is the root Bubble Tea model. Each tab is backed by one dashboard
// panel; only the active tab has a load in flight.
type Model struct {
	ctx   context.Context
	board *dashboard.Board

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	spinner   spinner.Model
	status    string
	width     int
	height    int
}

func NewModel(ctx context.Context, board *dashboard.Board) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		ctx:       ctx,
		board:     board,
		activeTab: tabMetrics,
		keys:      defaultKeys(),
		help:      help.New(),
		spinner:   sp,
		status:    "ready",
		width:     100,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.activate(m.activeTab))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case panelMsg[models.Metrics]:
		m.settle(tabMetrics, m.board.Metrics.Finish(msg.ticket, msg.data, msg.err), msg.err)

	case panelMsg[[]models.Load]:
		m.settle(tabLoads, m.board.Loads.Finish(msg.ticket, msg.data, msg.err), msg.err)

	case panelMsg[[]models.CallSession]:
		m.settle(tabCalls, m.board.Calls.Finish(msg.ticket, msg.data, msg.err), msg.err)

	case tea.KeyMsg:
		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.board.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Refresh):
			m.status = "refreshing " + tabResources[m.activeTab]
			return m, m.activate(m.activeTab)
		case key.Matches(msg, m.keys.Next):
			return m.switchTo((m.activeTab + 1) % tabCount)
		case key.Matches(msg, m.keys.Prev):
			return m.switchTo((m.activeTab + tabCount - 1) % tabCount)
		case key.Matches(msg, m.keys.Jump):
			return m.switchTo(tabID(msg.String()[0] - '1'))
		}
	}
	return m, nil
}

func (m *Model) settle(tab tabID, applied bool, err error) {
	if !applied {
		return
	}
	if err != nil {
		m.status = api.UserMessage(tabResources[tab], err)
		return
	}
	m.status = tabResources[tab] + " updated"
}

func (m Model) switchTo(tab tabID) (tea.Model, tea.Cmd) {
	if tab == m.activeTab {
		return m, nil
	}
	m.deactivate(m.activeTab)
	m.activeTab = tab
	return m, m.activate(tab)
}

// activate starts a load for tab and returns the command that performs it.
// Any earlier load for the same tab is cancelled and its result ignored.
func (m Model) activate(tab tabID) tea.Cmd {
	switch tab {
	case tabMetrics:
		return fetchCmd(m.ctx, m.board.Metrics)
	case tabLoads:
		return fetchCmd(m.ctx, m.board.Loads)
	case tabCalls:
		return fetchCmd(m.ctx, m.board.Calls)
	}
	return nil
}

func (m Model) deactivate(tab tabID) {
	switch tab {
	case tabMetrics:
		m.board.Metrics.Deactivate()
	case tabLoads:
		m.board.Loads.Deactivate()
	case tabCalls:
		m.board.Calls.Deactivate()
	}
}

func fetchCmd[T any](parent context.Context, p *dashboard.Panel[T]) tea.Cmd {
	ctx, ticket := p.Begin(parent)
	return func() tea.Msg {
		data, err := p.Fetch(ctx)
		return panelMsg[T]{ticket: ticket, data: data, err: err}
	}
}

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()

	var content string
	switch {
	case m.showHelp:
		content = m.help.View(m.keys)
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabMetrics:
		return renderPanel(m, m.board.Metrics.State(), tabResources[tabMetrics], RenderMetrics)
	case tabLoads:
		return renderPanel(m, m.board.Loads.State(), tabResources[tabLoads], RenderLoads)
	case tabCalls:
		return renderPanel(m, m.board.Calls.State(), tabResources[tabCalls], RenderCalls)
	}
	return ""
}

// renderPanel shows the spinner until data first arrives. After that the
// last good data stays on screen, with any error shown above it.
func renderPanel[T any](m Model, s dashboard.State[T], resource string, body func(T) string) string {
	var b strings.Builder
	if s.Err != nil {
		b.WriteString(theme.Error.Render(api.UserMessage(resource, s.Err)))
		if s.HasData {
			b.WriteString(theme.Muted.Render("  showing data from " + s.UpdatedAt.Format("15:04:05")))
		}
		b.WriteString("\n\n")
	}
	switch {
	case s.HasData:
		if s.Loading {
			b.WriteString(m.spinner.View() + theme.Muted.Render(" refreshing") + "\n")
		}
		b.WriteString(body(s.Data))
	case s.Loading:
		b.WriteString(m.spinner.View() + " Loading " + resource + "...")
	case s.Err == nil:
		b.WriteString(theme.Muted.Render("No " + resource + " loaded yet. Press r to refresh."))
	}
	return b.String()
}

// RenderMetrics, RenderLoads and RenderCalls are shared with the one-shot
// CLI commands.
func RenderMetrics(mt models.Metrics) string {
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Calls", format.Number(float64(mt.TotalCalls))),
		card("Conversion Rate", format.Percent(mt.ConversionRate)),
		card("Avg Rounds", format.Number(mt.AvgNegotiationRounds)),
		card("Revenue", format.Currency(mt.TotalRevenue)),
	)

	outcomes := breakdown("Outcomes", mt.Outcomes, func(k string) lipgloss.Style {
		return format.OutcomeStyle(models.Outcome(k))
	})
	sentiment := breakdown("Sentiment", mt.Sentiment, func(k string) lipgloss.Style {
		return format.SentimentStyle(models.Sentiment(k))
	})
	return lipgloss.JoinVertical(lipgloss.Left,
		cards,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, outcomes, "    ", sentiment),
	)
}

func card(label, value string) string {
	return theme.Card.Render(theme.Muted.Render(label) + "\n" + theme.BigValue.Render(value))
}

func breakdown(title string, counts map[string]int, style func(string) lipgloss.Style) string {
	keys := make([]string, 0, len(counts))
	total := 0
	for k, v := range counts {
		keys = append(keys, k)
		total += v
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	lines := []string{theme.Title.Render(title)}
	if len(keys) == 0 {
		lines = append(lines, theme.Muted.Render("no data"))
	}
	for _, k := range keys {
		share := 0.0
		if total > 0 {
			share = float64(counts[k]) * 100 / float64(total)
		}
		lines = append(lines, fmt.Sprintf("%s %3d  %s",
			style(k).Width(12).Render(format.Title(k)), counts[k], theme.Muted.Render(format.Percent(share))))
	}
	return strings.Join(lines, "\n")
}

func RenderLoads(loads []models.Load) string {
	if len(loads) == 0 {
		return theme.Muted.Render("No loads match the current filter.")
	}
	rows := make([][]string, 0, len(loads))
	for _, l := range loads {
		rows = append(rows, []string{
			l.LoadID,
			l.Origin + " → " + l.Destination,
			format.Date(l.PickupDatetime),
			format.Date(l.DeliveryDatetime),
			l.EquipmentType,
			format.Currency(l.LoadboardRate),
			format.NumberPtr(l.Weight),
			format.NumberPtr(l.Miles),
			format.Str(l.CommodityType),
		})
	}
	return newTable("Load", "Route", "Pickup", "Delivery", "Equipment", "Rate", "Weight", "Miles", "Commodity").
		Rows(rows...).
		String()
}

func RenderCalls(calls []models.CallSession) string {
	if len(calls) == 0 {
		return theme.Muted.Render("No calls recorded yet.")
	}
	rows := make([][]string, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, []string{
			c.CarrierName,
			c.CarrierMC,
			c.LoadID,
			format.Currency(c.InitialRate),
			format.CurrencyPtr(c.NegotiatedRate),
			fmt.Sprintf("%d", c.NegotiationRounds),
			format.OutcomeStyle(c.Outcome).Render(format.Title(string(c.Outcome))),
			format.SentimentStyle(c.Sentiment).Render(format.Title(string(c.Sentiment))),
			format.Duration(c.CallDuration),
			format.Date(c.CreatedAt),
		})
	}
	return newTable("Carrier", "MC", "Load", "Initial", "Final", "Rounds", "Outcome", "Sentiment", "Duration", "Created").
		Rows(rows...).
		String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Surface1)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.Header
			}
			return theme.Cell
		})
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabLabels[i])
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(label)
		} else {
			parts[i] = theme.Muted.Render(label)
		}
	}
	bar := theme.Title.Render("Carrier Sales") + "  " + strings.Join(parts, theme.Muted.Render("│"))
	return bar + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  r:refresh  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return "\n" + left + strings.Repeat(" ", gap) + right
}
