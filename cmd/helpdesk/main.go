package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"

	"helpdesk/internal/app"
	"helpdesk/internal/chat"
	"helpdesk/internal/client"
	"helpdesk/internal/config"
	"helpdesk/internal/logging"
	"helpdesk/internal/store"
	"helpdesk/internal/types"
)

const usageText = `helpdesk is a terminal client for the support chat service.

Usage:
  helpdesk <command> [flags]

Commands:
  console  run the operator console (requires an operator token)
  widget   run the end-user chat widget
  sessions list support sessions
  stats    show support statistics
  resolve  mark a session resolved
  reopen   reopen a resolved session
  config   print the effective configuration
  help     show help

Examples:
  helpdesk console
  helpdesk widget
  helpdesk resolve 42 --notes "fixed by restart"
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	case "console":
		exitOnErr("console", runConsole(args[1:]))
	case "widget":
		exitOnErr("widget", runWidget(args[1:]))
	case "sessions":
		exitOnErr("sessions", runSessions(args[1:]))
	case "stats":
		exitOnErr("stats", runStats(args[1:]))
	case "resolve":
		exitOnErr("resolve", runResolve(args[1:]))
	case "reopen":
		exitOnErr("reopen", runReopen(args[1:]))
	case "config":
		exitOnErr("config", runConfig(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func exitOnErr(label string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func runConsole(args []string) error {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	log, closeLog, err := fileLogger(settings)
	if err != nil {
		return err
	}
	defer closeLog()

	api, err := client.New(settings, log)
	if err != nil {
		return err
	}
	if !api.HasToken() {
		return errors.New("console requires an operator token (see config token_path)")
	}
	viewer, err := chat.ResolveViewer(api.Token(), nil)
	if err != nil {
		return errors.New("operator token carries no usable identity")
	}
	return app.RunConsole(api, viewer, settings, log)
}

func runWidget(args []string) error {
	fs := flag.NewFlagSet("widget", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	log, closeLog, err := fileLogger(settings)
	if err != nil {
		return err
	}
	defer closeLog()

	api, err := client.New(settings, log)
	if err != nil {
		return err
	}

	statePath, err := config.StatePath()
	if err != nil {
		return err
	}
	st, err := store.NewBboltStateStore(statePath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	state, err := st.Load(ctx)
	cancel()
	if err != nil {
		return err
	}
	return app.RunWidget(api, st, api.Token(), state, settings, log)
}

func runSessions(args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	api, _, err := oneShotClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()
	sessions, err := api.ListSessions(ctx)
	if err != nil {
		return err
	}
	printSessions(sessions)
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	api, _, err := oneShotClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()
	stats, err := api.Stats(ctx)
	if err != nil {
		return err
	}
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(writer, "total sessions\t%d\n", stats.TotalSessions)
	fmt.Fprintf(writer, "open sessions\t%d\n", stats.OpenSessions)
	fmt.Fprintf(writer, "today\t%d\n", stats.TodaySessions)
	fmt.Fprintf(writer, "avg response\t%.1f min\n", stats.AvgResponseMinutes)
	return writer.Flush()
}

func runResolve(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	notes := fs.String("notes", "", "resolution notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sessionID, err := sessionIDArg(fs, "resolve")
	if err != nil {
		return err
	}

	api, _, err := oneShotClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()
	if err := chat.NewLifecycle(api).Resolve(ctx, sessionID, *notes); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "ok")
	return nil
}

func runReopen(args []string) error {
	fs := flag.NewFlagSet("reopen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	sessionID, err := sessionIDArg(fs, "reopen")
	if err != nil {
		return err
	}

	api, _, err := oneShotClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()
	if err := chat.NewLifecycle(api).Reopen(ctx, sessionID); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "ok")
	return nil
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	tokenPath, err := settings.ResolveTokenPath()
	if err != nil {
		return err
	}
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(writer, "config\t%s\n", configPath)
	fmt.Fprintf(writer, "service\t%s\n", settings.ServiceBaseURL()+settings.ServiceEndpoint())
	fmt.Fprintf(writer, "token\t%s\n", tokenPath)
	fmt.Fprintf(writer, "session list interval\t%s\n", settings.SessionListInterval())
	fmt.Fprintf(writer, "message interval\t%s\n", settings.MessageInterval())
	fmt.Fprintf(writer, "widget interval\t%s\n", settings.WidgetInterval())
	fmt.Fprintf(writer, "scroll threshold\t%d lines\n", settings.ScrollThreshold())
	fmt.Fprintf(writer, "log level\t%s\n", settings.LogLevel())
	return writer.Flush()
}

func oneShotClient() (*client.Client, logging.Logger, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(os.Stderr, logging.ParseLevel(settings.LogLevel()))
	api, err := client.New(settings, log)
	if err != nil {
		return nil, nil, err
	}
	return api, log, nil
}

// fileLogger routes logs to the data dir while a TUI owns the terminal.
func fileLogger(settings config.Settings) (logging.Logger, func(), error) {
	logPath, err := config.LogPath()
	if err != nil {
		return nil, nil, err
	}
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(file, logging.ParseLevel(settings.LogLevel()))
	return log, func() { _ = file.Close() }, nil
}

func sessionIDArg(fs *flag.FlagSet, command string) (int64, error) {
	if fs.NArg() < 1 {
		return 0, fmt.Errorf("%s requires a session id", command)
	}
	var sessionID int64
	if _, err := fmt.Sscanf(fs.Arg(0), "%d", &sessionID); err != nil {
		return 0, fmt.Errorf("invalid session id %q", fs.Arg(0))
	}
	return sessionID, nil
}

func printSessions(sessions []*types.ChatSession) {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSTATUS\tPRIORITY\tUNREAD\tPARTICIPANT\tUPDATED")
	for _, session := range sessions {
		updated := "-"
		if !session.UpdatedAt.IsZero() {
			updated = session.UpdatedAt.Format("2006-01-02 15:04")
		}
		name := runewidth.Truncate(session.Participant.DisplayName(), 24, "…")
		fmt.Fprintf(writer, "%d\t%s\t%s\t%d\t%s\t%s\n",
			session.ID, session.Status, session.Priority, session.Unread,
			name, updated)
	}
	_ = writer.Flush()
}
