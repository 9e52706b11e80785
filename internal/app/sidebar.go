package app

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"helpdesk/internal/types"
)

// SidebarController renders the session list and tracks the selection by
// session id, so a silent refresh that reorders the list does not move the
// operator's cursor to a different conversation.
type SidebarController struct {
	sessions []*types.ChatSession
	selected int64
	width    int
	height   int
}

func NewSidebarController(width, height int) *SidebarController {
	return &SidebarController{width: width, height: height}
}

func (c *SidebarController) Resize(width, height int) {
	if c == nil {
		return
	}
	c.width = width
	c.height = height
}

// SetSessions replaces the list. The selection follows its session id; if
// that session is gone the cursor falls back to the first entry.
func (c *SidebarController) SetSessions(sessions []*types.ChatSession) {
	if c == nil {
		return
	}
	c.sessions = sessions
	if c.indexOf(c.selected) < 0 {
		c.selected = 0
		if len(sessions) > 0 {
			c.selected = sessions[0].ID
		}
	}
}

func (c *SidebarController) Sessions() []*types.ChatSession {
	if c == nil {
		return nil
	}
	return c.sessions
}

func (c *SidebarController) Selected() *types.ChatSession {
	if c == nil {
		return nil
	}
	if i := c.indexOf(c.selected); i >= 0 {
		return c.sessions[i]
	}
	return nil
}

func (c *SidebarController) SelectedID() int64 {
	if c == nil {
		return 0
	}
	return c.selected
}

// Move shifts the cursor and reports whether the selection changed.
func (c *SidebarController) Move(delta int) bool {
	if c == nil || len(c.sessions) == 0 {
		return false
	}
	i := c.indexOf(c.selected)
	if i < 0 {
		i = 0
	} else {
		i += delta
		if i < 0 {
			i = 0
		}
		if i >= len(c.sessions) {
			i = len(c.sessions) - 1
		}
	}
	if c.sessions[i].ID == c.selected {
		return false
	}
	c.selected = c.sessions[i].ID
	return true
}

func (c *SidebarController) View() string {
	if c == nil {
		return ""
	}
	if len(c.sessions) == 0 {
		return helpStyle.Render("no sessions")
	}
	lines := make([]string, 0, len(c.sessions))
	for _, s := range c.sessions {
		lines = append(lines, c.renderSession(s, s.ID == c.selected))
		if c.height > 0 && len(lines) >= c.height {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func (c *SidebarController) renderSession(s *types.ChatSession, selected bool) string {
	marker := priorityMarker(s.Priority)
	name := s.Participant.DisplayName()
	badge := ""
	if s.Unread > 0 {
		badge = fmt.Sprintf(" (%d)", s.Unread)
	}
	line := fmt.Sprintf("%s %s%s", marker, name, badge)
	width := max(1, c.width)
	line = xansi.Truncate(line, width, "…")
	switch {
	case selected:
		return selectedStyle.Render(padToWidth(line, width))
	case s.Status == types.SessionStatusResolved:
		return resolvedStyle.Render(line)
	case s.Unread > 0:
		return sessionUnreadStyle.Render(line)
	}
	return priorityStyleFor(string(s.Priority)).Render(line)
}

func (c *SidebarController) indexOf(id int64) int {
	if id <= 0 {
		return -1
	}
	for i, s := range c.sessions {
		if s != nil && s.ID == id {
			return i
		}
	}
	return -1
}

func priorityMarker(p types.SessionPriority) string {
	switch p {
	case types.PriorityUrgent:
		return "!!"
	case types.PriorityHigh:
		return " !"
	case types.PriorityLow:
		return " ."
	}
	return "  "
}

func padToWidth(text string, width int) string {
	gap := width - xansi.StringWidth(text)
	if gap <= 0 {
		return text
	}
	return text + strings.Repeat(" ", gap)
}
