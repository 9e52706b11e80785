package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"
)

type confirmChoice int

const (
	confirmChoiceNone confirmChoice = iota
	confirmChoiceConfirm
	confirmChoiceCancel
)

const confirmMaxWidth = 60

// ConfirmController renders a modal yes/no prompt for destructive actions.
// While open it consumes every key.
type ConfirmController struct {
	active   bool
	title    string
	message  string
	selected int
}

func NewConfirmController() *ConfirmController {
	return &ConfirmController{}
}

func (c *ConfirmController) IsOpen() bool {
	return c != nil && c.active
}

func (c *ConfirmController) Open(title, message string) {
	if c == nil {
		return
	}
	c.active = true
	c.title = strings.TrimSpace(title)
	c.message = strings.TrimSpace(message)
	c.selected = 1
}

func (c *ConfirmController) Close() {
	if c == nil {
		return
	}
	c.active = false
	c.title = ""
	c.message = ""
	c.selected = 0
}

func (c *ConfirmController) HandleKey(msg tea.KeyPressMsg) (bool, confirmChoice) {
	if c == nil || !c.active {
		return false, confirmChoiceNone
	}
	switch msg.String() {
	case "esc", "q", "n":
		return true, confirmChoiceCancel
	case "y":
		return true, confirmChoiceConfirm
	case "left", "h", "right", "l", "tab":
		c.selected = 1 - c.selected
		return true, confirmChoiceNone
	case "enter":
		if c.selected == 0 {
			return true, confirmChoiceConfirm
		}
		return true, confirmChoiceCancel
	}
	return true, confirmChoiceNone
}

func (c *ConfirmController) View(maxWidth int) string {
	if c == nil || !c.active {
		return ""
	}
	width := confirmMaxWidth
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	contentWidth := max(1, width-4)

	title := c.title
	if title == "" {
		title = "Confirm"
	}
	title = xansi.Truncate(title, contentWidth, "…")
	lines := []string{confirmHeaderStyle.Render(" " + padToWidth(title, contentWidth) + " ")}

	if c.message != "" {
		for _, line := range strings.Split(xansi.Hardwrap(c.message, contentWidth, true), "\n") {
			lines = append(lines, confirmBodyStyle.Render(" "+padToWidth(line, contentWidth)+" "))
		}
	}

	confirm := "[Yes]"
	cancel := "[No]"
	if c.selected == 0 {
		confirm = selectedStyle.Render(confirm)
		cancel = confirmBodyStyle.Render(cancel)
	} else {
		confirm = confirmBodyStyle.Render(confirm)
		cancel = selectedStyle.Render(cancel)
	}
	buttons := " " + confirm + "  " + cancel
	lines = append(lines, padToWidth(buttons, contentWidth+2))

	return confirmBorderStyle.Render(strings.Join(lines, "\n"))
}
