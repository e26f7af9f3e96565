// Package tui provides the interactive chat interface over the
// assistant service.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driving"
)

// answerMsg carries the assistant's reply back into the update loop.
type answerMsg struct {
	answer *domain.Answer
	err    error
}

// exchange is one question/answer pair in the transcript.
type exchange struct {
	question string
	answer   string
	hits     int64
	failed   bool
}

// styles for the chat transcript.
var (
	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4"))

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A"))
)

// Chat is the bubbletea model for the interactive question loop.
type Chat struct {
	assistant driving.Assistant
	ctx       context.Context

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	history []exchange
	waiting bool
	ready   bool
	width   int
	height  int
}

// NewChat creates the chat model.
func NewChat(ctx context.Context, assistant driving.Assistant) *Chat {
	input := textarea.New()
	input.Placeholder = "Ask about invoices, purchases, customers..."
	input.SetHeight(2)
	input.CharLimit = 500
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = mutedStyle

	return &Chat{
		assistant: assistant,
		ctx:       ctx,
		input:     input,
		spinner:   sp,
		width:     80,
		height:    24,
	}
}

// Run starts the chat in the terminal and blocks until the user quits.
func Run(ctx context.Context, assistant driving.Assistant) error {
	_, err := tea.NewProgram(NewChat(ctx, assistant), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (c *Chat) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		inputHeight := c.input.Height() + 2
		c.viewport = viewport.New(msg.Width, msg.Height-inputHeight-2)
		c.viewport.SetContent(c.transcript())
		c.input.SetWidth(msg.Width - 4)
		c.ready = true
		return c, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return c, tea.Quit
		case tea.KeyEnter:
			if c.waiting {
				return c, nil
			}
			question := strings.TrimSpace(c.input.Value())
			if question == "" {
				return c, nil
			}
			c.input.Reset()
			c.waiting = true
			c.history = append(c.history, exchange{question: question})
			c.refreshTranscript()
			return c, tea.Batch(c.spinner.Tick, c.ask(question))
		}

	case answerMsg:
		c.waiting = false
		last := &c.history[len(c.history)-1]
		if msg.err != nil {
			last.answer = msg.err.Error()
			last.failed = true
		} else {
			last.answer = msg.answer.Text
			last.hits = msg.answer.Hits
		}
		c.refreshTranscript()
		return c, nil

	case spinner.TickMsg:
		if !c.waiting {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd
	}

	if !c.waiting {
		var inputCmd tea.Cmd
		c.input, inputCmd = c.input.Update(msg)
		cmds = append(cmds, inputCmd)
	}

	var viewportCmd tea.Cmd
	c.viewport, viewportCmd = c.viewport.Update(msg)
	cmds = append(cmds, viewportCmd)

	return c, tea.Batch(cmds...)
}

// View implements tea.Model.
func (c *Chat) View() string {
	if !c.ready {
		return "Starting..."
	}

	status := mutedStyle.Render("enter: ask  esc: quit")
	if c.waiting {
		status = c.spinner.View() + mutedStyle.Render(" thinking...")
	}

	return fmt.Sprintf("%s\n%s\n%s",
		c.viewport.View(),
		inputStyle.Render(c.input.View()),
		status)
}

// ask runs the assistant call off the update loop.
func (c *Chat) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := c.assistant.Ask(c.ctx, question)
		return answerMsg{answer: answer, err: err}
	}
}

func (c *Chat) refreshTranscript() {
	if !c.ready {
		return
	}
	c.viewport.SetContent(c.transcript())
	c.viewport.GotoBottom()
}

// transcript renders the question/answer history.
func (c *Chat) transcript() string {
	if len(c.history) == 0 {
		return mutedStyle.Render("Ask a question about your accounting data.")
	}

	var b strings.Builder
	for i, ex := range c.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("> " + ex.question))
		b.WriteString("\n")
		switch {
		case ex.answer == "":
			b.WriteString(mutedStyle.Render("..."))
		case ex.failed:
			b.WriteString(errorStyle.Render(ex.answer))
		default:
			b.WriteString(answerStyle.Render(ex.answer))
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(
				fmt.Sprintf("(%d matching documents)", ex.hits)))
		}
	}
	return b.String()
}
