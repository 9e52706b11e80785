package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestConfirmKeyChoices(t *testing.T) {
	c := NewConfirmController()
	c.Open("Delete session", "Really?")

	handled, choice := c.HandleKey(key('y'))
	if !handled || choice != confirmChoiceConfirm {
		t.Fatalf("y = (%v, %v), want confirm", handled, choice)
	}

	handled, choice = c.HandleKey(key('n'))
	if !handled || choice != confirmChoiceCancel {
		t.Fatalf("n = (%v, %v), want cancel", handled, choice)
	}

	// Enter defaults to the safe choice.
	handled, choice = c.HandleKey(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !handled || choice != confirmChoiceCancel {
		t.Fatalf("enter = (%v, %v), want cancel by default", handled, choice)
	}

	c.HandleKey(tea.KeyPressMsg{Code: tea.KeyTab})
	_, choice = c.HandleKey(tea.KeyPressMsg{Code: tea.KeyEnter})
	if choice != confirmChoiceConfirm {
		t.Fatalf("tab then enter must confirm, got %v", choice)
	}
}

func TestConfirmConsumesEveryKeyWhileOpen(t *testing.T) {
	c := NewConfirmController()
	c.Open("Delete", "")
	handled, choice := c.HandleKey(key('z'))
	if !handled || choice != confirmChoiceNone {
		t.Fatalf("unrelated keys are swallowed while the dialog is open")
	}
}

func TestConfirmClosedIgnoresKeys(t *testing.T) {
	c := NewConfirmController()
	if handled, _ := c.HandleKey(key('y')); handled {
		t.Fatalf("a closed dialog must not handle keys")
	}
	if c.IsOpen() {
		t.Fatalf("controller starts closed")
	}
}

func TestConfirmView(t *testing.T) {
	c := NewConfirmController()
	c.Open("Delete message", "This cannot be undone.")
	view := c.View(80)
	if !strings.Contains(view, "Delete message") || !strings.Contains(view, "cannot be undone") {
		t.Fatalf("view must show title and message:\n%s", view)
	}
	if !strings.Contains(view, "[Yes]") || !strings.Contains(view, "[No]") {
		t.Fatalf("view must show both buttons:\n%s", view)
	}
}
