package app

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	xansi "github.com/charmbracelet/x/ansi"

	"helpdesk/internal/chat"
	"helpdesk/internal/types"
)

// TranscriptController owns the message viewport. Appends follow the bottom
// only while the follow gate is armed; a viewer who scrolled up keeps their
// position while the transcript grows underneath.
type TranscriptController struct {
	viewport  viewport.Model
	follow    chat.FollowGate
	threshold int
	messages  []*types.ChatMessage
	selected  int
}

func NewTranscriptController(width, height, threshold int) *TranscriptController {
	vp := viewport.New(viewport.WithWidth(max(1, width)), viewport.WithHeight(max(1, height)))
	return &TranscriptController{
		viewport:  vp,
		follow:    chat.NewFollowGate(),
		threshold: threshold,
		selected:  -1,
	}
}

func (c *TranscriptController) Resize(width, height int) {
	if c == nil {
		return
	}
	c.viewport.SetWidth(max(1, width))
	c.viewport.SetHeight(max(1, height))
	c.render()
}

// SetMessages replaces the transcript. A session switch resets both the
// selection and the follow gate; a refresh of the same session preserves
// them and auto-scrolls only while the gate is armed.
func (c *TranscriptController) SetMessages(messages []*types.ChatMessage, newSession bool) {
	if c == nil {
		return
	}
	c.messages = messages
	if newSession {
		c.selected = -1
		c.follow.Rearm()
	} else if c.selected >= len(messages) {
		c.selected = len(messages) - 1
	}
	c.render()
	if c.follow.ShouldAutoScroll() {
		c.viewport.GotoBottom()
	}
}

func (c *TranscriptController) Messages() []*types.ChatMessage {
	if c == nil {
		return nil
	}
	return c.messages
}

func (c *TranscriptController) ScrollUp(lines int) {
	if c == nil {
		return
	}
	c.viewport.ScrollUp(lines)
	c.observe()
}

func (c *TranscriptController) ScrollDown(lines int) {
	if c == nil {
		return
	}
	c.viewport.ScrollDown(lines)
	c.observe()
}

func (c *TranscriptController) GotoBottom() {
	if c == nil {
		return
	}
	c.viewport.GotoBottom()
	c.follow.Rearm()
}

func (c *TranscriptController) Following() bool {
	if c == nil {
		return false
	}
	return c.follow.ShouldAutoScroll()
}

// MoveSelection shifts the message selection used for per-message actions.
// Moving below the last message clears the selection.
func (c *TranscriptController) MoveSelection(delta int) {
	if c == nil || len(c.messages) == 0 {
		return
	}
	next := c.selected + delta
	if c.selected < 0 {
		// First movement starts from the newest message.
		next = len(c.messages) - 1
	}
	if next < 0 {
		next = 0
	}
	if next >= len(c.messages) {
		c.ClearSelection()
		return
	}
	c.selected = next
	c.render()
}

func (c *TranscriptController) ClearSelection() {
	if c == nil {
		return
	}
	c.selected = -1
	c.render()
}

func (c *TranscriptController) SelectedMessage() *types.ChatMessage {
	if c == nil || c.selected < 0 || c.selected >= len(c.messages) {
		return nil
	}
	return c.messages[c.selected]
}

func (c *TranscriptController) View() string {
	if c == nil {
		return ""
	}
	return c.viewport.View()
}

// Text renders the transcript without styling, for the clipboard.
func (c *TranscriptController) Text() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for i, m := range c.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s", m.SentAt.Format("2006-01-02 15:04"), senderLabel(m), m.Text))
	}
	return b.String()
}

func (c *TranscriptController) observe() {
	distance := chat.DistanceFromBottom(c.viewport.YOffset(), c.viewport.Height(), c.viewport.TotalLineCount())
	c.follow.Observe(distance, c.threshold)
}

func (c *TranscriptController) render() {
	width := c.viewport.Width()
	if width <= 0 {
		return
	}
	lines := make([]string, 0, len(c.messages))
	for i, m := range c.messages {
		lines = append(lines, renderMessage(m, width, i == c.selected))
	}
	if len(lines) == 0 {
		lines = append(lines, helpStyle.Render("no messages yet"))
	}
	c.viewport.SetContent(strings.Join(lines, "\n"))
}

func renderMessage(m *types.ChatMessage, width int, selected bool) string {
	stamp := timestampStyle.Render(m.SentAt.Format("15:04"))
	label := senderLabel(m)
	body := m.Text
	lineStyle := visitorLineStyle
	switch m.Sender {
	case types.SenderAdmin:
		lineStyle = agentLineStyle
	case types.SenderSystem:
		lineStyle = systemLineStyle
	}
	if selected {
		lineStyle = selectedMessageStyle
	}
	head := stamp + " " + lineStyle.Render(label+":")
	indent := "      "
	wrapWidth := max(1, width-len(indent))
	wrapped := strings.Split(xansi.Hardwrap(body, wrapWidth, true), "\n")
	out := make([]string, 0, len(wrapped))
	for i, line := range wrapped {
		if i == 0 {
			out = append(out, head+" "+lineStyle.Render(line))
			continue
		}
		out = append(out, indent+lineStyle.Render(line))
	}
	return strings.Join(out, "\n")
}

func senderLabel(m *types.ChatMessage) string {
	switch m.Sender {
	case types.SenderAdmin:
		return "support"
	case types.SenderSystem:
		return "system"
	}
	return "visitor"
}
