package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// stubAssistant returns a fixed answer or error.
type stubAssistant struct {
	answer *domain.Answer
	err    error
	asked  []string
}

func (s *stubAssistant) Ask(_ context.Context, question string) (*domain.Answer, error) {
	s.asked = append(s.asked, question)
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func sized(c *Chat) *Chat {
	model, _ := c.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return model.(*Chat)
}

func TestChatEnterSubmitsQuestion(t *testing.T) {
	assistant := &stubAssistant{answer: &domain.Answer{Text: "42 invoices", Hits: 42}}
	chat := sized(NewChat(context.Background(), assistant))

	chat.input.SetValue("how many invoices?")
	model, cmd := chat.Update(tea.KeyMsg{Type: tea.KeyEnter})
	chat = model.(*Chat)

	assert.True(t, chat.waiting)
	require.Len(t, chat.history, 1)
	assert.Equal(t, "how many invoices?", chat.history[0].question)
	require.NotNil(t, cmd)
}

func TestChatAnswerUpdatesTranscript(t *testing.T) {
	assistant := &stubAssistant{}
	chat := sized(NewChat(context.Background(), assistant))
	chat.history = append(chat.history, exchange{question: "q"})
	chat.waiting = true

	model, _ := chat.Update(answerMsg{answer: &domain.Answer{Text: "the answer", Hits: 3}})
	chat = model.(*Chat)

	assert.False(t, chat.waiting)
	assert.Equal(t, "the answer", chat.history[0].answer)
	assert.Contains(t, chat.transcript(), "the answer")
	assert.Contains(t, chat.transcript(), "3 matching documents")
}

func TestChatErrorIsShownInline(t *testing.T) {
	chat := sized(NewChat(context.Background(), &stubAssistant{}))
	chat.history = append(chat.history, exchange{question: "q"})
	chat.waiting = true

	model, _ := chat.Update(answerMsg{err: errors.New("invalid query: field \"bogus\" does not exist")})
	chat = model.(*Chat)

	assert.True(t, chat.history[0].failed)
	assert.Contains(t, chat.transcript(), "bogus")
}

func TestChatEmptyInputIsIgnored(t *testing.T) {
	chat := sized(NewChat(context.Background(), &stubAssistant{}))

	chat.input.SetValue("   ")
	model, _ := chat.Update(tea.KeyMsg{Type: tea.KeyEnter})
	chat = model.(*Chat)

	assert.False(t, chat.waiting)
	assert.Empty(t, chat.history)
}

func TestChatQuitKeys(t *testing.T) {
	chat := sized(NewChat(context.Background(), &stubAssistant{}))

	_, cmd := chat.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
