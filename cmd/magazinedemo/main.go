// Interactive demo: a scrollable feed whose geometry comes entirely
// from the layout engine. Cards self-size: each render measures the
// styled card and reports the height back, and the engine shifts the
// rows below without relaying out the whole feed.
//
// Keys: j/k or arrows scroll, a appends, i inserts at top, d deletes
// the first visible card, r reloads it, q quits.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"magazine"
)

var bodies = []string{
	"Shipped the new build. Rollout starts tomorrow morning.",
	"Long-form update: the migration finished over the weekend, read times are down 40% and the backfill job is finally idle. Next up is retiring the old replicas.",
	"lgtm",
	"Reminder that the office is closed Friday.",
	"Draft agenda for Thursday: 1) quarter review 2) hiring 3) open floor. Add items before Wednesday EOD if you want them discussed.",
	"Can someone take a look at the flaky integration test? It only fails on the arm runners.",
}

type entry struct {
	id   string
	body string
}

// feed owns the demo's content and doubles as the engine's data and
// metrics sources.
type feed struct {
	entries []entry
	width   float64
}

func (f *feed) NumberOfSections() int         { return 1 }
func (f *feed) NumberOfItems(int) int         { return len(f.entries) }
func (f *feed) ItemID(p magazine.IndexPath) string { return f.entries[p.Item].id }

func (f *feed) ItemSizing(magazine.IndexPath) magazine.ItemSizing {
	return magazine.ItemSizing{EstimatedHeight: 3}
}

func (f *feed) MetricsForSection(int) magazine.SectionMetrics {
	return magazine.SectionMetrics{
		Width:      f.width,
		Insets:     magazine.Insets{Top: 1, Bottom: 1},
		RowSpacing: 1,
	}
}

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 1)

var statusStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241"))

type model struct {
	feed   *feed
	engine *magazine.Engine

	width  int
	height int
	scroll float64
	seq    int
}

func newModel() *model {
	f := &feed{width: 80}
	m := &model{feed: f, engine: magazine.NewEngine(f, f)}
	for i := 0; i < 12; i++ {
		m.append()
	}
	return m
}

func (m *model) nextEntry() entry {
	m.seq++
	return entry{
		id:   fmt.Sprintf("card-%d", m.seq),
		body: bodies[rand.Intn(len(bodies))],
	}
}

// append adds an entry to the data and delivers the matching batch.
func (m *model) append() {
	m.feed.entries = append(m.feed.entries, m.nextEntry())
	m.applyInsert(len(m.feed.entries) - 1)
}

func (m *model) insertAtTop() {
	m.feed.entries = append([]entry{m.nextEntry()}, m.feed.entries...)
	m.applyInsert(0)
}

func (m *model) applyInsert(index int) {
	batch := magazine.UpdateBatch{Items: []magazine.ItemEdit{
		magazine.InsertItem(magazine.IndexPath{Item: index}, "", magazine.ItemSizing{}),
	}}
	if err := m.engine.ApplyUpdates(batch); err == nil {
		m.engine.FinalizeUpdates()
	}
}

func (m *model) deleteAt(index int) {
	if index < 0 || index >= len(m.feed.entries) {
		return
	}
	m.feed.entries = append(m.feed.entries[:index], m.feed.entries[index+1:]...)
	batch := magazine.UpdateBatch{Items: []magazine.ItemEdit{
		magazine.DeleteItem(magazine.IndexPath{Item: index}),
	}}
	if err := m.engine.ApplyUpdates(batch); err == nil {
		m.engine.FinalizeUpdates()
	}
}

func (m *model) reloadAt(index int) {
	if index < 0 || index >= len(m.feed.entries) {
		return
	}
	m.feed.entries[index].body = bodies[rand.Intn(len(bodies))]
	batch := magazine.UpdateBatch{Items: []magazine.ItemEdit{
		magazine.ReloadItem(magazine.IndexPath{Item: index}, magazine.ItemSizing{EstimatedHeight: 3}),
	}}
	if err := m.engine.ApplyUpdates(batch); err == nil {
		m.engine.FinalizeUpdates()
	}
}

// firstVisible returns the index of the topmost card in the viewport.
func (m *model) firstVisible() int {
	attrs := m.engine.ItemsIn(m.viewport(), magazine.AfterUpdates)
	if len(attrs) == 0 {
		return -1
	}
	return attrs[0].Path.Item
}

func (m *model) viewport() magazine.Rect {
	return magazine.MakeRect(0, m.scroll, float64(m.width), float64(m.height-1))
}

func (m *model) clampScroll() {
	max := m.engine.ContentHeight(magazine.AfterUpdates) - float64(m.height-1)
	if m.scroll > max {
		m.scroll = max
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.feed.width = float64(msg.Width)
		m.engine.InvalidateMetrics()
		m.clampScroll()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			m.scroll += 2
			m.clampScroll()
		case "k", "up":
			m.scroll -= 2
			m.clampScroll()
		case "a":
			m.append()
		case "i":
			m.insertAtTop()
		case "d":
			m.deleteAt(m.firstVisible())
			m.clampScroll()
		case "r":
			m.reloadAt(m.firstVisible())
		}
	}
	return m, nil
}

// renderCard styles an entry at the current width and returns the
// rendered lines.
func (m *model) renderCard(e entry) []string {
	card := cardStyle.Width(m.width - 2).Render(e.id + "\n" + e.body)
	return strings.Split(card, "\n")
}

func (m *model) View() string {
	if m.width == 0 {
		return "loading"
	}

	rows := m.height - 1
	canvas := make([]string, rows)

	// Measure-and-report loop: render visible cards, feed measured
	// heights back, and re-query until geometry settles. Settles in
	// two passes at most for the visible window.
	var attrs []*magazine.LayoutAttributes
	for pass := 0; pass < 3; pass++ {
		attrs = m.engine.ItemsIn(m.viewport(), magazine.AfterUpdates)
		settled := true
		for _, a := range attrs {
			lines := m.renderCard(m.feed.entries[a.Path.Item])
			if h := float64(len(lines)); h != a.Frame.Size.Height {
				m.engine.ReportPreferredHeight(a.Path, h)
				settled = false
			}
		}
		if settled {
			break
		}
	}

	for _, a := range attrs {
		lines := m.renderCard(m.feed.entries[a.Path.Item])
		top := int(a.Frame.MinY() - m.scroll)
		for i, line := range lines {
			if top+i >= 0 && top+i < rows {
				canvas[top+i] = line
			}
		}
	}

	status := fmt.Sprintf(" %d cards · height %.0f · scroll %.0f · a/i/d/r edit · q quit",
		len(m.feed.entries), m.engine.ContentHeight(magazine.AfterUpdates), m.scroll)
	return strings.Join(canvas, "\n") + "\n" + statusStyle.Render(status)
}

func main() {
	if _, err := tea.NewProgram(newModel(), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
