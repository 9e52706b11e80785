package main

import (
	"flag"
	"testing"
)

func TestSessionIDArg(t *testing.T) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	if err := fs.Parse([]string{"42"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	id, err := sessionIDArg(fs, "resolve")
	if err != nil || id != 42 {
		t.Fatalf("sessionIDArg = %d, %v", id, err)
	}

	fs = flag.NewFlagSet("reopen", flag.ContinueOnError)
	if err := fs.Parse([]string{"abc"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := sessionIDArg(fs, "reopen"); err == nil {
		t.Fatalf("expected error for a non-numeric id")
	}

	fs = flag.NewFlagSet("reopen", flag.ContinueOnError)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := sessionIDArg(fs, "reopen"); err == nil {
		t.Fatalf("expected error for a missing id")
	}
}
