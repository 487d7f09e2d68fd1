package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
	"github.com/desertthunder/ytradio/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	StreamView
	DetailView
)

const eventBuffer = 16

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	source   Source
	view     ViewState
	width    int
	height   int
	input    textinput.Model
	spinner  spinner.Model
	songs    list.Model
	seed     *models.SongDetails
	selected *models.EnrichedSong
	events   chan models.ChannelEvent
	runCtx   context.Context
	cancel   context.CancelFunc
	run      int
	busy     bool
	status   string
	failed   bool
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model reading songs from source.
func NewModel(ctx context.Context, source Source) *Model {
	input := textinput.New()
	input.Placeholder = "Song name, e.g. Shape of You"
	input.CharLimit = 200
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.title.UnsetMarginBottom()

	songs := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	songs.Title = "Related Songs"
	songs.SetShowHelp(false)

	return &Model{
		ctx:     ctx,
		source:  source,
		view:    SearchView,
		input:   input,
		spinner: spin,
		songs:   songs,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the cursor blinking in the search box.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songs.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case StreamView:
			return m.handleStreamKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		if msg.run != m.run {
			return m, nil
		}
		switch msg.kind {
		case MsgSeedFound:
			return m.handleSeed(msg.data.(seedResult))
		case MsgEventReceived:
			return m.handleEvent(msg.data.(models.ChannelEvent))
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case StreamView:
		return m.renderStream()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.stop()
		return m, tea.Quit
	case "enter":
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.view = StreamView
		return m, tea.Batch(m.spinner.Tick, m.startSearch(query))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleStreamKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.songs.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.songs, cmd = m.songs.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.stop()
		return m, tea.Quit
	case "r", "esc":
		m.reset()
		return m, textinput.Blink
	case "enter":
		if item, ok := m.songs.SelectedItem().(songItem); ok {
			song := item.song
			m.selected = &song
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songs, cmd = m.songs.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.stop()
		return m, tea.Quit
	case "esc", "enter":
		m.selected = nil
		m.view = StreamView
	}
	return m, nil
}

func (m *Model) handleSeed(result seedResult) (tea.Model, tea.Cmd) {
	if result.err != nil {
		m.err = result.err
		m.busy = false
		m.stop()
		return m, nil
	}
	m.seed = result.details
	m.status = "Finding related songs..."
	return m, m.waitForEvent()
}

func (m *Model) handleEvent(event models.ChannelEvent) (tea.Model, tea.Cmd) {
	if event.Kind == models.EventRelatedSong && event.Song != nil {
		cmd := m.songs.InsertItem(len(m.songs.Items()), songItem{song: *event.Song})
		m.status = fmt.Sprintf("Received %d related songs...", len(m.songs.Items()))
		return m, tea.Batch(cmd, m.waitForEvent())
	}

	m.busy = false
	m.status = event.Message
	m.failed = event.Kind == models.EventError
	m.stop()
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case StreamView:
		m.songs, cmd = m.songs.Update(msg)
	}
	return m, cmd
}

// startSearch replaces any running search and returns the command resolving the seed.
func (m *Model) startSearch(query string) tea.Cmd {
	m.stop()
	m.run++
	m.busy = true
	m.err = nil
	m.failed = false
	m.seed = nil
	m.status = fmt.Sprintf("Searching for %q...", query)
	m.songs.SetItems([]list.Item{})

	ctx, cancel := context.WithCancel(m.ctx)
	events := make(chan models.ChannelEvent, eventBuffer)
	m.runCtx = ctx
	m.cancel = cancel
	m.events = events

	run := m.run
	sink := tasks.SinkFunc(func(e models.ChannelEvent) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	})

	return func() tea.Msg {
		details, err := m.source.Start(ctx, query, sink)
		return seedFoundMsg(run, details, err)
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	run, events, ctx := m.run, m.events, m.runCtx
	return func() tea.Msg {
		select {
		case e := <-events:
			return eventReceivedMsg(run, e)
		case <-ctx.Done():
			return nil
		}
	}
}

// stop cancels the running search, if any. Pending events of that search are dropped.
func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) reset() {
	m.stop()
	m.run++
	m.busy = false
	m.seed = nil
	m.selected = nil
	m.err = nil
	m.status = ""
	m.songs.SetItems([]list.Item{})
	m.input.Reset()
	m.input.Focus()
	m.view = SearchView
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Find Related Songs")
	exitKey := key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "quit"),
	)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.search, exitKey})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderStream() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit}))
		return b.String()
	}

	if m.seed != nil {
		b.WriteString(styles.title.Render(fmt.Sprintf("Songs like %s", m.seed.Title)))
		b.WriteString("\n")
		b.WriteString(styles.help.Render(m.seed.Artists))
		b.WriteString("\n\n")
	}

	switch {
	case m.busy:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.status))
	case m.status == tasks.NoRelatedMessage:
		b.WriteString(styles.warn.Render("○ " + m.status))
	case m.failed:
		b.WriteString(styles.err.Render("✗ " + m.status))
	default:
		b.WriteString(styles.ok.Render("✓ " + m.status))
	}
	b.WriteString("\n\n")

	if len(m.songs.Items()) > 0 {
		b.WriteString(m.songs.View())
		b.WriteString("\n\n")
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.restart, m.keys.quit}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	song := m.selected

	audio := styles.warn.Render("unavailable")
	if song.HasAudio() {
		audio = *song.AudioURL
	}
	featuring := "-"
	if len(song.Featuring) > 0 {
		featuring = strings.Join(song.Featuring, ", ")
	}

	rows := []string{
		styles.label.Render("Artists") + shared.JoinArtists(song.Artists),
		styles.label.Render("Featuring") + featuring,
		styles.label.Render("Video ID") + song.VideoID,
		styles.label.Render("Album Art") + song.AlbumArtURL,
		styles.label.Render("Audio") + audio,
	}

	title := styles.title.Render(fmt.Sprintf("%d. %s", song.Index, song.Title))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, strings.Join(rows, "\n"), helpView)
}
