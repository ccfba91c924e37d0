package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/hexsim/internal/play"
)

const (
	PlaceHolderText = "Type a command (help for the list)..."
	requestTimeout  = 30 * time.Second
)

type entryKind int

const (
	entryInput entryKind = iota
	entryLine
	entryError
	entryInfo
)

type entry struct {
	kind entryKind
	tick int
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	backend      Backend
	status       play.Status
	transcript   []entry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int

	// copy is swapped out in tests
	copy func(string) error
}

type replyMsg struct {
	reply play.Reply
}

type statusMsg struct {
	status play.Status
	err    error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	tickStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(backend Backend) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		backend:      backend,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		copy:         clipboard.WriteAll,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.refreshStatus(), m.submit("look"))
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth, metaWidth := m.panelWidths()
		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeStatus(m.status, m.backend.Name()))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.transcript = append(m.transcript, entry{kind: entryInput, tick: m.status.Tick, text: input})
			m.loading = true
			m.progressTick = 0
			m.writeChatContent()
			return m, tea.Batch(m.submit(input), progressTick())
		}

	case replyMsg:
		m.loading = false
		r := msg.reply
		for _, line := range r.Lines {
			m.transcript = append(m.transcript, entry{kind: entryLine, tick: r.Tick, text: line})
		}
		if r.Error != "" {
			m.transcript = append(m.transcript, entry{kind: entryError, tick: r.Tick, text: r.Error})
		}
		m.status.Tick = r.Tick
		m.writeChatContent()
		if r.Quit {
			m.showQuitModal = true
			return m, nil
		}
		return m, m.refreshStatus()

	case statusMsg:
		if msg.err == nil {
			m.status = msg.status
			m.metaViewport.SetContent(writeStatus(m.status, m.backend.Name()))
		} else {
			m.transcript = append(m.transcript, entry{kind: entryError, tick: m.status.Tick, text: "Status unavailable: " + msg.err.Error()})
			m.writeChatContent()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) panelWidths() (int, int) {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6
	return chatWidth, metaWidth
}

// writeChatContent renders the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("HEXSIM") + "\n\n")
	content.WriteString("Type commands below. /help lists console commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, e := range m.transcript {
		content.WriteString(formatEntry(e, chatWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func formatEntry(e entry, width int) string {
	prefix := fmt.Sprintf("[%d] ", e.tick)
	text := wordwrap.String(e.text, max(width-len(prefix), 10))
	switch e.kind {
	case entryInput:
		return userStyle.Render("> " + text)
	case entryError:
		return errorStyle.Render(text)
	case entryInfo:
		return text
	}
	return tickStyle.Render(prefix) + formatSpeaker(text)
}

// formatSpeaker highlights a leading "Name says:" style speaker.
func formatSpeaker(line string) string {
	for _, verb := range []string{" says:", " shouts:", " screams:", " to "} {
		idx := strings.Index(line, verb)
		if idx <= 0 || idx > 30 {
			continue
		}
		if verb == " to " {
			colon := strings.Index(line, ":")
			if colon < idx {
				continue
			}
			return speakerStyle.Render(line[:colon+1]) + line[colon+1:]
		}
		end := idx + len(verb)
		return speakerStyle.Render(line[:end]) + line[end:]
	}
	return line
}

func writeStatus(st play.Status, backend string) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STATUS") + "\n\n")

	fmt.Fprintf(&content, "Session:\n%s\n\n", shortID(st.Session))
	fmt.Fprintf(&content, "Backend:\n%s\n\n", backend)
	fmt.Fprintf(&content, "Tick:\n%d\n\n", st.Tick)

	name := st.Name
	if name == "" {
		name = st.PlayerID
	}
	fmt.Fprintf(&content, "Player:\n%s\n\n", name)
	fmt.Fprintf(&content, "Location:\n%s\n\n", st.Location)
	if st.Dead {
		content.WriteString(errorStyle.Render("DEAD") + "\n\n")
	} else {
		fmt.Fprintf(&content, "HP:\n%d/%d\n\n", st.HP, st.MaxHP)
	}
	if st.Hunger != "" {
		fmt.Fprintf(&content, "Hunger:\n%s\n\n", st.Hunger)
	}

	content.WriteString("Carrying:\n")
	if len(st.Inventory) == 0 {
		content.WriteString("Nothing\n")
	}
	for _, id := range st.Inventory {
		fmt.Fprintf(&content, "• %s\n", id)
	}
	if len(st.Equipped) > 0 {
		content.WriteString("\nEquipped:\n")
		for _, slot := range slices.Sorted(maps.Keys(st.Equipped)) {
			fmt.Fprintf(&content, "• %s: %s\n", slot, st.Equipped[slot])
		}
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy transcript\n")
	content.WriteString("• /clear: Clear transcript\n")

	return content.String()
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:8] + "..."
	}
	return id
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		m.transcript = append(m.transcript, entry{kind: entryInfo, text: `Console commands:
• /help - Show this help
• /copy - Copy the transcript to the clipboard
• /clear - Clear the transcript
• Ctrl+C - Quit

Everything else is sent to the simulation; type "help" for its commands.`})

	case "/copy":
		if err := m.copy(m.plainTranscript()); err != nil {
			m.transcript = append(m.transcript, entry{kind: entryError, tick: m.status.Tick, text: "Copy failed: " + err.Error()})
		} else {
			m.transcript = append(m.transcript, entry{kind: entryInfo, text: "Transcript copied."})
		}

	case "/clear":
		m.transcript = nil

	default:
		m.transcript = append(m.transcript, entry{kind: entryError, tick: m.status.Tick, text: "Unknown console command: " + cmd})
	}

	m.writeChatContent()
	return m, nil
}

// plainTranscript is the transcript without styling.
func (m ConsoleUI) plainTranscript() string {
	var b strings.Builder
	for _, e := range m.transcript {
		switch e.kind {
		case entryInput:
			fmt.Fprintf(&b, "[%d] > %s\n", e.tick, e.text)
		case entryInfo:
			continue
		default:
			fmt.Fprintf(&b, "[%d] %s\n", e.tick, e.text)
		}
	}
	return b.String()
}

func (m ConsoleUI) submit(line string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return replyMsg{backend.Handle(ctx, line)}
	}
}

func (m ConsoleUI) refreshStatus() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := backend.Status(ctx)
		return statusMsg{st, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the town?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth, metaWidth := m.panelWidths()

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	usable = min(max(usable, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
