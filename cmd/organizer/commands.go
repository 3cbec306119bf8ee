package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tgienger/organizer/internal/api"
	"github.com/tgienger/organizer/internal/config"
	"github.com/tgienger/organizer/internal/db"
	"github.com/tgienger/organizer/internal/logger"
	"github.com/tgienger/organizer/internal/server"
	"github.com/tgienger/organizer/internal/syncstore"
	"github.com/tgienger/organizer/internal/ui"
)

const shutdownTimeout = 10 * time.Second

// stores are the three collections the client works with
type stores struct {
	tasks  *syncstore.TaskStore
	notes  *syncstore.NoteStore
	events *syncstore.EventStore
}

func newStores(cfg *config.Config, log *logger.Logger) stores {
	log = log.WithComponent("sync")
	opts := []syncstore.Option{
		syncstore.WithOrdering(ordering(cfg.Sync.Ordering)),
		syncstore.WithTimeout(cfg.Sync.Timeout),
		syncstore.WithLogger(log),
	}
	return stores{
		tasks:  syncstore.NewTaskStore(api.NewCollection(cfg.API.TasksEndpoint(), nil), opts...),
		notes:  syncstore.NewNoteStore(api.NewCollection(cfg.API.NotesEndpoint(), nil), opts...),
		events: syncstore.NewEventStore(api.NewCollection(cfg.API.EventsEndpoint(), nil), opts...),
	}
}

func ordering(name string) syncstore.Ordering {
	if name == config.OrderingResolved {
		return syncstore.LastResolvedWins
	}
	return syncstore.IssueOrder
}

// uiLogger keeps log output off the terminal the UI draws on
func uiLogger(cfg config.LoggerConfig) (*logger.Logger, error) {
	if cfg.Output != "file" {
		dir, err := config.StateDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state directory: %w", err)
		}
		cfg.Output = "file"
		cfg.Filename = filepath.Join(dir, "organizer.log")
	}
	return logger.New(cfg)
}

func runUI(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := uiLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer log.Close()

	s := newStores(cfg, log)
	log.Infow("Starting organizer",
		"version", version,
		"tasks", cfg.API.TasksEndpoint(),
		"notes", cfg.API.NotesEndpoint(),
		"events", cfg.API.EventsEndpoint(),
	)

	p := tea.NewProgram(ui.NewApp(s.tasks, s.notes, s.events), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the collection service",
		Long:  "Serve the tasks, notes and events collections over HTTP from the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*configPath)
		},
	}
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer log.Close()

	database, err := db.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()

	srv := server.New(cfg, database, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func newListCommand(configPath *string) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print a collection",
	}

	listCmd.AddCommand(&cobra.Command{
		Use:   "tasks",
		Short: "Print tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := loadStores(*configPath)
			if err != nil {
				return err
			}
			defer log.Close()
			if err := s.tasks.Refresh(cmd.Context()); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tSUBTASKS\tTITLE")
			for _, t := range s.tasks.List() {
				due := "-"
				if t.Date != nil {
					due = t.Date.Local().Format("2006-01-02")
				}
				done := 0
				for _, st := range t.Subtasks {
					if st.Completed {
						done++
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n", t.ID, t.Status, t.Priority, due, done, len(t.Subtasks), t.Title)
			}
			return w.Flush()
		},
	})

	listCmd.AddCommand(&cobra.Command{
		Use:   "notes",
		Short: "Print notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := loadStores(*configPath)
			if err != nil {
				return err
			}
			defer log.Close()
			if err := s.notes.Refresh(cmd.Context()); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOTEBOOK\tCREATED\tTITLE")
			for _, n := range s.notes.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Notebook, n.Date.Local().Format("2006-01-02"), n.Title)
			}
			return w.Flush()
		},
	})

	listCmd.AddCommand(&cobra.Command{
		Use:   "events",
		Short: "Print calendar events",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, log, err := loadStores(*configPath)
			if err != nil {
				return err
			}
			defer log.Close()
			if err := s.events.Refresh(cmd.Context()); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTYPE\tTITLE")
			for _, e := range s.events.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Date.Local().Format("2006-01-02 15:04"), e.Type, e.Title)
			}
			return w.Flush()
		},
	})

	return listCmd
}

// loadStores builds stores for one-shot commands; their logs go to stderr.
// The caller closes the returned logger.
func loadStores(configPath string) (stores, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return stores{}, nil, err
	}
	logCfg := cfg.Logger
	if logCfg.Output != "file" {
		logCfg.Output = "stderr"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return stores{}, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return newStores(cfg, log), log, nil
}

func newArchiveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <task-id>",
		Short: "Archive a task",
		Long:  "Ask the service to archive a task. Archived tasks stay in the collection but leave the board.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			id, err := api.ParseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if cfg.Sync.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Sync.Timeout)
				defer cancel()
			}
			if err := api.NewCollection(cfg.API.TasksEndpoint(), nil).Archive(ctx, id); err != nil {
				return fmt.Errorf("archive task %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s archived\n", id)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "organizer %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
