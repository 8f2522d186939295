package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hochfrequenz/nudge/internal/config"
	"github.com/hochfrequenz/nudge/internal/domain"
	"github.com/hochfrequenz/nudge/internal/encourage"
	"github.com/hochfrequenz/nudge/internal/engine"
	"github.com/hochfrequenz/nudge/internal/history"
	"github.com/hochfrequenz/nudge/internal/notify"
	"github.com/hochfrequenz/nudge/internal/schedule"
	"github.com/hochfrequenz/nudge/internal/sessionstore"
	"github.com/hochfrequenz/nudge/tui"
	"github.com/hochfrequenz/nudge/web/api"
)

var (
	runURL       string
	runTotal     int
	runFirst     int
	runSecond    int
	runSubseq    int
	servePort    int
	historyLimit int
	sessionLimit int
)

func init() {
	// run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a reminder session in the foreground",
		RunE:  runRun,
	}
	runCmd.Flags().StringVar(&runURL, "url", "", "target URL (default from config)")
	runCmd.Flags().IntVar(&runTotal, "total", 0, "session length in seconds")
	runCmd.Flags().IntVar(&runFirst, "first", 0, "first interval in seconds")
	runCmd.Flags().IntVar(&runSecond, "second", 0, "second interval in seconds")
	runCmd.Flags().IntVar(&runSubseq, "subseq", 0, "subsequent interval in seconds")
	rootCmd.AddCommand(runCmd)

	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on")
	rootCmd.AddCommand(serveCmd)

	// tui command
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the TUI dashboard",
		RunE:  runTUI,
	}
	rootCmd.AddCommand(tuiCmd)

	// history command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded reminders",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of records to show")
	rootCmd.AddCommand(historyCmd)

	// sessions command
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List past sessions",
		RunE:  runSessions,
	}
	sessionsCmd.Flags().IntVar(&sessionLimit, "limit", 20, "number of sessions to show")
	rootCmd.AddCommand(sessionsCmd)
}

func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

func buildEngine(cfg *config.Config, session domain.SessionConfig) (*engine.Engine, *history.Store) {
	store := history.New(cfg.History.Path, cfg.History.MaxRecords)
	sink := notify.NewSystem(session.BrowserPath, cfg.Session.SoundFile)
	return engine.New(store, sink, engine.Options{}), store
}

func sessionFromFlags(defaults domain.SessionConfig) domain.SessionConfig {
	overlay := domain.SessionConfig{
		URL:       runURL,
		TotalSec:  runTotal,
		FirstSec:  runFirst,
		SecondSec: runSecond,
		SubseqSec: runSubseq,
	}
	merged := config.MergeSession(overlay, defaults)
	merged.SoundEnabled = defaults.SoundEnabled
	return merged
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	session := sessionFromFlags(cfg.Session)
	eng, _ := buildEngine(cfg, session)

	sessions, err := sessionstore.New(cfg.Sessions.DatabasePath)
	if err != nil {
		return err
	}
	defer sessions.Close()

	events := eng.Subscribe(16)
	if err := eng.Start(session); err != nil {
		return err
	}

	sessionID, err := sessions.Start(session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session log unavailable: %v\n", err)
	}

	fmt.Printf("Session started: %s for %s\n", session.URL, (time.Duration(session.TotalSec) * time.Second).String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			eng.Stop()
		case event := <-events:
			switch event.Type {
			case engine.EventFired:
				fmt.Printf("[%s] reminder %d (%s)\n",
					event.At.Format("15:04:05"), event.Snapshot.Count, event.Record.Status)
			case engine.EventCompleted:
				fmt.Println("Session complete.")
				finishSession(sessions, sessionID, event.Snapshot.Count, sessionstore.OutcomeCompleted)
				return nil
			case engine.EventStopped:
				fmt.Println("Session stopped.")
				finishSession(sessions, sessionID, event.Snapshot.Count, sessionstore.OutcomeStopped)
				return nil
			}
		}
	}
}

func finishSession(sessions *sessionstore.Store, id string, fireCount int, outcome sessionstore.Outcome) {
	if id == "" {
		return
	}
	if err := sessions.Finish(id, fireCount, outcome); err != nil {
		fmt.Fprintf(os.Stderr, "session log update failed: %v\n", err)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	eng, store := buildEngine(cfg, cfg.Session)

	sessions, err := sessionstore.New(cfg.Sessions.DatabasePath)
	if err != nil {
		return err
	}
	defer sessions.Close()

	port := servePort
	if port == 0 {
		port = cfg.Web.Port
	}
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)

	llm := encourage.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.KeyFile)
	server := api.NewServer(eng, store, llm, cfg, cfgPath, addr)

	watcher, err := config.NewWatcher(cfgPath, func(next *config.Config) {
		server.SetConfig(next)
		fmt.Printf("Reloaded config from %s\n", cfgPath)
	})
	if err == nil {
		defer watcher.Close()
	}

	var group errgroup.Group

	group.Go(func() error {
		fmt.Printf("Starting web UI at http://%s\n", addr)
		return server.Start()
	})

	if len(cfg.Schedule) > 0 {
		sched, err := schedule.NewScheduler(cfg.Schedule)
		if err != nil {
			return err
		}
		group.Go(func() error {
			sched.Start(func(name string) bool {
				if err := eng.Start(cfg.Session); err != nil {
					return false
				}
				fmt.Printf("Schedule %q started a session\n", name)
				return true
			})
			return nil
		})
	}

	group.Go(func() error {
		logSessions(eng, sessions)
		return nil
	})

	return group.Wait()
}

// logSessions mirrors engine lifecycle into the session log.
func logSessions(eng *engine.Engine, sessions *sessionstore.Store) {
	events := eng.Subscribe(16)
	var currentID string
	for event := range events {
		switch event.Type {
		case engine.EventFired:
			if event.Snapshot.Count == 1 {
				id, err := sessions.Start(domain.SessionConfig{
					URL:      event.Record.URL,
					TotalSec: event.Snapshot.TotalSec,
				})
				if err == nil {
					currentID = id
				}
			}
		case engine.EventCompleted:
			finishSession(sessions, currentID, event.Snapshot.Count, sessionstore.OutcomeCompleted)
			currentID = ""
		case engine.EventStopped:
			finishSession(sessions, currentID, event.Snapshot.Count, sessionstore.OutcomeStopped)
			currentID = ""
		}
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	eng, store := buildEngine(cfg, cfg.Session)

	model := tui.NewModel(tui.ModelConfig{
		Engine:  eng,
		History: store,
		Session: cfg.Session,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	eng.Stop()
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	store := history.New(cfg.History.Path, cfg.History.MaxRecords)
	records := store.EnrichIntervals()
	if len(records) > historyLimit {
		records = records[len(records)-historyLimit:]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tWHEN\tSTATUS\tEXPECTED\tACTUAL\tNOTE")
	for _, r := range records {
		when := r.Timestamp
		if t := r.Time(); !t.IsZero() {
			when = humanize.Time(t)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Count, when, r.Status, formatOptSec(r.ExpectedSec), formatOptSec(r.ActualSec), r.Note)
	}
	return w.Flush()
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := sessionstore.New(cfg.Sessions.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.List(sessionLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tURL\tLENGTH\tREMINDERS\tOUTCOME")
	for _, s := range sessions {
		outcome := string(s.Outcome)
		if outcome == "" {
			outcome = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			humanize.Time(s.StartedAt), s.URL,
			(time.Duration(s.TotalSec) * time.Second).String(),
			s.FireCount, outcome)
	}
	return w.Flush()
}

func formatOptSec(sec *int) string {
	if sec == nil {
		return "-"
	}
	return (time.Duration(*sec) * time.Second).String()
}
