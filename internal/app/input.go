package app

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// ChatInput wraps the single-line composer used by both surfaces.
type ChatInput struct {
	input textinput.Model
}

func NewChatInput(width int) *ChatInput {
	input := textinput.New()
	input.SetWidth(max(1, width))
	return &ChatInput{input: input}
}

func (c *ChatInput) Resize(width int) {
	c.input.SetWidth(max(1, width))
}

func (c *ChatInput) Focus() {
	c.input.Focus()
}

func (c *ChatInput) Blur() {
	c.input.Blur()
}

func (c *ChatInput) Focused() bool {
	return c.input.Focused()
}

func (c *ChatInput) SetPlaceholder(value string) {
	c.input.Placeholder = value
}

func (c *ChatInput) SetValue(value string) {
	c.input.SetValue(value)
}

func (c *ChatInput) Value() string {
	return c.input.Value()
}

func (c *ChatInput) Clear() {
	c.input.SetValue("")
}

func (c *ChatInput) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *ChatInput) View() string {
	return c.input.View()
}
