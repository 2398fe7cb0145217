package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"kitchen-party/config"
	"kitchen-party/debug"
	"kitchen-party/display"
	"kitchen-party/midi"
	"kitchen-party/theme"
	"kitchen-party/trigger"
	"kitchen-party/widgets"
)

// How often held keys are checked for release
const releaseTickRate = 50 * time.Millisecond

var quitKey = key.NewBinding(
	key.WithKeys("ctrl+c", "esc"),
	key.WithHelp("esc", "quit"),
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0"))
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f33"))
)

// Hold sets how long a key stays held without a repeat. The OS waits longer
// before the first repeat than between later ones, so the two differ.
type Hold struct {
	FirstRepeat time.Duration // after the initial press
	Repeat      time.Duration // after each repeat
}

// Model is the terminal front-end. Terminals report key presses and repeats
// but never releases, so a key counts as held while its repeats keep coming
// and is released once they stop.
type Model struct {
	Mapper *trigger.Mapper
	Screen *display.Screen
	Theme  *theme.Theme
	Router *midi.Router
	Ports  *midi.PortManager // may be nil

	Hold Hold

	deadlines map[trigger.Key]time.Time
	now       func() time.Time
	width     int
	height    int
	quitting  bool
}

type releaseTickMsg time.Time

type PortEventMsg midi.PortEvent

func NewModel(mapper *trigger.Mapper, screen *display.Screen, th *theme.Theme, router *midi.Router, ports *midi.PortManager, hold Hold) Model {
	return Model{
		Mapper:    mapper,
		Screen:    screen,
		Theme:     th,
		Router:    router,
		Ports:     ports,
		Hold:      hold,
		deadlines: make(map[trigger.Key]time.Time),
		now:       time.Now,
	}
}

func tickRelease() tea.Cmd {
	return tea.Tick(releaseTickRate, func(t time.Time) tea.Msg {
		return releaseTickMsg(t)
	})
}

func ListenForPorts(pm *midi.PortManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-pm.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickRelease()}
	if m.Ports != nil {
		cmds = append(cmds, ListenForPorts(m.Ports))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			m.quitting = true
			clear(m.deadlines)
			m.Mapper.ReleaseAll()
			m.Mapper.Shutdown()
			return m, tea.Quit
		}
		k, ok := KeyFromMsg(msg)
		if !ok {
			return m, nil
		}
		if _, held := m.deadlines[k]; held {
			m.deadlines[k] = m.now().Add(m.Hold.Repeat)
			return m, nil
		}
		if !m.Mapper.KeyDown(k) {
			return m, nil
		}
		m.deadlines[k] = m.now().Add(m.Hold.FirstRepeat)

	case releaseTickMsg:
		m.releaseExpired(time.Time(msg))
		return m, tickRelease()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case PortEventMsg:
		// status is read back from Ports on the next View
		debug.Log("ui", "port %s (%s) connected=%v", msg.Output, msg.Port, msg.Connected)
		return m, ListenForPorts(m.Ports)
	}

	return m, nil
}

// releaseExpired releases held keys whose repeats stopped before t
func (m Model) releaseExpired(t time.Time) {
	var expired []trigger.Key
	for k, deadline := range m.deadlines {
		if !t.Before(deadline) {
			expired = append(expired, k)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	for _, k := range expired {
		delete(m.deadlines, k)
		m.Mapper.KeyUp(k)
	}
}

// KeyFromMsg maps a terminal key to an installation key
func KeyFromMsg(msg tea.KeyMsg) (trigger.Key, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return trigger.KeyUp, true
	case tea.KeyDown:
		return trigger.KeyDown, true
	case tea.KeyLeft:
		return trigger.KeyLeft, true
	case tea.KeyRight:
		return trigger.KeyRight, true
	case tea.KeyRunes:
		if len(msg.Runes) != 1 || msg.Alt {
			return "", false
		}
		r := msg.Runes[0]
		if r == '[' {
			return trigger.KeyOpenBracket, true
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		switch k := trigger.Key(string(r)); k {
		case trigger.KeyQ, trigger.KeyW, trigger.KeyE, trigger.KeyR, trigger.KeyT, trigger.KeyY,
			trigger.KeyU, trigger.KeyI, trigger.KeyO, trigger.KeyP:
			return k, true
		}
	}
	return "", false
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := m.header()
	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "piano", Keys: []widgets.KeyBinding{{Key: "qwerty", Desc: "keys"}}},
		{Title: "drums", Keys: []widgets.KeyBinding{{Key: "uiop[", Desc: "hits"}}},
		{Title: "horn", Keys: []widgets.KeyBinding{{Key: "arrows", Desc: "notes"}}},
		{Keys: []widgets.KeyBinding{{Key: quitKey.Help().Key, Desc: quitKey.Help().Desc}}},
	}))

	canvasH := m.height - lipgloss.Height(header) - lipgloss.Height(help)
	canvas := widgets.RenderCanvas(m.width, canvasH, m.colorAt(m.width, canvasH))

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n")
	if canvas != "" {
		out.WriteString(canvas)
		out.WriteString("\n")
	}
	out.WriteString(help)
	return out.String()
}

func (m Model) header() string {
	var active []string
	for _, k := range m.Mapper.Active() {
		active = append(active, string(k))
	}
	line := headerStyle.Render("kitchen-party") + dimStyle.Render(fmt.Sprintf("  held:[%s]", strings.Join(active, " ")))

	for _, name := range config.Outputs {
		style := missStyle
		if m.Ports != nil && m.Ports.Connected(name) {
			style = okStyle
		}
		line += " " + style.Render(name)
	}

	if m.Router != nil {
		sent, dropped := m.Router.Stats()
		line += dimStyle.Render(fmt.Sprintf("  sent:%d dropped:%d", sent, dropped))
	}
	return line
}

// colorAt composites the fill and the visible regions for one cell
func (m Model) colorAt(w, h int) func(x, y int) colorful.Color {
	fill := theme.FillColor(m.Screen.Fill())
	visible := m.Screen.VisibleRegions(w, h)
	return func(x, y int) colorful.Color {
		c := fill
		for _, r := range visible {
			if x >= r.Rect.Min.X && x < r.Rect.Max.X && y >= r.Rect.Min.Y && y < r.Rect.Max.Y {
				c = m.Theme.Over(r.Group, r.Index, c)
			}
		}
		return c
	}
}
