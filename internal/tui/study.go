package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tmaki/subvoc/internal/dictionary"
	"github.com/tmaki/subvoc/internal/logging"
	"github.com/tmaki/subvoc/internal/player"
	"github.com/tmaki/subvoc/internal/session"
	"github.com/tmaki/subvoc/internal/timeline"
)

// how often the player clock is polled
const clockPollInterval = 300 * time.Millisecond

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	subtitleStyle  = lipgloss.NewStyle().Padding(1, 2)
	tokenStyle     = lipgloss.NewStyle()
	taggedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Underline(true)
	cursorStyle    = lipgloss.NewStyle().Reverse(true)
	selectedStyle  = lipgloss.NewStyle().Reverse(true).Foreground(lipgloss.Color("205"))
	candidateStyle = lipgloss.NewStyle().PaddingLeft(2)
	digitStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type clockTickMsg struct{}

type clockReadMsg struct {
	t   float64
	err error
}

type entryChangedMsg struct{ entry *timeline.Entry }

type selectionChangedMsg struct {
	subtitleID string
	tokenIndex int
}

type meaningsChangedMsg struct {
	key  session.Key
	list []dictionary.Candidate
}

type persistErrMsg struct{ err error }

type candidatesFetchedMsg struct{ err error }

// Model is the study screen: the current subtitle's tokens, a cursor for
// picking one, and the numbered candidate list for the selection.
type Model struct {
	sess   *session.Session
	clock  player.Clock
	logger *logging.Logger

	// session callbacks run on session goroutines; they hand events to the
	// update loop through this channel
	events chan tea.Msg

	entry      *timeline.Entry
	cursor     int
	candidates []dictionary.Candidate
	candKey    session.Key
	fetching   bool
	lastErr    error
	width      int
}

// NewModel builds a study screen and the callbacks to construct its session
// with. Bind the session with SetSession before running the program.
func NewModel(clock player.Clock, logger *logging.Logger) (*Model, session.Callbacks) {
	m := &Model{
		clock:  clock,
		logger: logger,
		events: make(chan tea.Msg, 16),
	}
	cb := session.Callbacks{
		OnEntryChanged: func(entry *timeline.Entry) {
			m.events <- entryChangedMsg{entry: entry}
		},
		OnSelectionChanged: func(subtitleID string, tokenIndex int) {
			m.events <- selectionChangedMsg{subtitleID: subtitleID, tokenIndex: tokenIndex}
		},
		OnMeaningsChanged: func(key session.Key, list []dictionary.Candidate) {
			m.events <- meaningsChangedMsg{key: key, list: list}
		},
		OnPersistError: func(err error) {
			m.events <- persistErrMsg{err: err}
		},
	}
	return m, cb
}

// SetSession binds the session the callbacks were handed to.
func (m *Model) SetSession(sess *session.Session) {
	m.sess = sess
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.scheduleClockTick(), m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) scheduleClockTick() tea.Cmd {
	return tea.Tick(clockPollInterval, func(time.Time) tea.Msg {
		return clockTickMsg{}
	})
}

func (m *Model) readClock() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), clockPollInterval)
		defer cancel()
		t, err := m.clock.CurrentTime(ctx)
		return clockReadMsg{t: t, err: err}
	}
}

func (m *Model) fetchCandidates() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := m.sess.FetchCandidates(ctx)
		return candidatesFetchedMsg{err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case clockTickMsg:
		return m, tea.Batch(m.scheduleClockTick(), m.readClock())

	case clockReadMsg:
		if msg.err == nil {
			m.sess.Tick(msg.t)
		}
		return m, nil

	case entryChangedMsg:
		m.entry = msg.entry
		m.cursor = 0
		return m, m.waitForEvent()

	case selectionChangedMsg:
		if msg.tokenIndex == -1 {
			m.candidates = nil
			m.fetching = false
		}
		return m, m.waitForEvent()

	case meaningsChangedMsg:
		m.candidates = msg.list
		m.candKey = msg.key
		m.fetching = false
		return m, m.waitForEvent()

	case persistErrMsg:
		m.lastErr = msg.err
		if m.logger != nil {
			m.logger.Errorw("failed to save assignment", "error", msg.err)
		}
		return m, m.waitForEvent()

	case candidatesFetchedMsg:
		if msg.err != nil {
			m.fetching = false
			m.lastErr = msg.err
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down", "right":
		if err := m.sess.Handle(ctx, session.Event{Action: session.ActionAdvance}); err != nil {
			m.lastErr = err
		}
		return m, nil

	case "k", "up", "left":
		if err := m.sess.Handle(ctx, session.Event{Action: session.ActionPrevious}); err != nil {
			m.lastErr = err
		}
		return m, nil

	case "r":
		if err := m.sess.Handle(ctx, session.Event{Action: session.ActionRestart}); err != nil {
			m.lastErr = err
		}
		return m, nil

	case "tab", "w":
		if m.entry != nil && len(m.entry.Tokens) > 0 {
			m.cursor = (m.cursor + 1) % len(m.entry.Tokens)
		}
		return m, nil

	case "shift+tab", "b":
		if m.entry != nil && len(m.entry.Tokens) > 0 {
			m.cursor = (m.cursor - 1 + len(m.entry.Tokens)) % len(m.entry.Tokens)
		}
		return m, nil

	case "enter", "d":
		if m.entry == nil || len(m.entry.Tokens) == 0 {
			return m, nil
		}
		if err := m.sess.SelectToken(m.entry.ID, m.cursor); err != nil {
			m.lastErr = err
			return m, nil
		}
		m.fetching = true
		m.lastErr = nil
		return m, m.fetchCandidates()

	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		digit := int(key[0] - '0')
		if err := m.sess.Handle(ctx, session.Event{Action: session.ActionDigit, Digit: digit}); err != nil {
			m.lastErr = err
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("subvoc"))
	b.WriteString("\n")

	if m.entry == nil {
		b.WriteString(subtitleStyle.Render("waiting for playback..."))
		b.WriteString("\n")
		b.WriteString(m.helpView())
		return b.String()
	}

	selKey, hasSel := m.sess.Selection()

	var rendered []string
	for i, tok := range m.entry.Tokens {
		style := tokenStyle
		if tok.MeaningID != 0 {
			style = taggedStyle
		}
		switch {
		case hasSel && selKey.SubtitleID == m.entry.ID && selKey.TokenIndex == i:
			style = selectedStyle
		case i == m.cursor:
			style = cursorStyle
		}
		rendered = append(rendered, style.Render(tok.Text))
	}
	b.WriteString(subtitleStyle.Render(strings.Join(rendered, " ")))
	b.WriteString("\n")

	b.WriteString(helpStyle.Render(fmt.Sprintf("%s  %.1fs-%.1fs",
		m.entry.ID, m.entry.StartTime, m.entry.EndTime)))
	b.WriteString("\n")

	if m.fetching {
		b.WriteString(candidateStyle.Render("looking up meanings..."))
		b.WriteString("\n")
	} else if len(m.candidates) > 0 {
		b.WriteString("\n")
		for i, cand := range m.candidates {
			digit := (i + 1) % 10
			line := fmt.Sprintf("%s %s", digitStyle.Render(fmt.Sprintf("[%d]", digit)), cand.Label)
			if cand.PartOfSpeech != "" {
				line += helpStyle.Render(" (" + cand.PartOfSpeech + ")")
			}
			if cand.Definition != "" {
				line += ": " + cand.Definition
			}
			b.WriteString(candidateStyle.Render(line))
			b.WriteString("\n")
		}
	}

	if m.lastErr != nil {
		b.WriteString(errStyle.Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.helpView())
	return b.String()
}

func (m *Model) helpView() string {
	return helpStyle.Render(
		"j/k navigate • r restart • tab cycle word • enter lookup • 1-9,0 tag • q quit")
}
