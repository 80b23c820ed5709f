package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/jwebster45206/feed-engine/internal/config"
	"github.com/jwebster45206/feed-engine/internal/feed"
	"github.com/jwebster45206/feed-engine/internal/logger"
	"github.com/jwebster45206/feed-engine/internal/services/queue"
	"github.com/jwebster45206/feed-engine/internal/session"
	"github.com/jwebster45206/feed-engine/internal/storage"
)

// statsEvery throttles line counter updates sent to the UI
const statsEvery = 25

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("console", pflag.ContinueOnError)
	feedFile := flags.StringP("feed", "f", "", "recorded feed file (default FEED_FILE, then stdin)")
	layoutFile := flags.StringP("layout", "l", "", "layout YAML file (default LAYOUT_FILE, then built-in)")
	logFile := flags.String("log-file", "", "write logs to this file; logs are discarded when empty")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *feedFile != "" {
		cfg.FeedFile = *feedFile
	}
	if *layoutFile != "" {
		cfg.LayoutFile = *layoutFile
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		logOut = f
	}
	log := logger.SetupWriter(cfg, logOut)

	defs, err := config.LoadLayout(cfg.LayoutFile)
	if err != nil {
		return err
	}
	config.CapLines(defs, cfg.MaxLines)

	sess := session.New(defs, nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := openSource(ctx, cfg, sess, log)
	if err != nil {
		return err
	}
	defer src.close()

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithMouseAllMotion(),
	}
	if src.usesStdin {
		// Keyboard input comes from the terminal while the feed arrives on stdin
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(NewConsoleUI(sess, src.label), opts...)

	pump := feed.NewPump(sess, log, feed.Options{
		OnApplied: func(stats feed.Stats) {
			if stats.Lines%statsEvery == 0 {
				p.Send(feedStatsMsg{stats: stats})
			}
		},
	})
	go func() {
		stats, err := pump.Run(ctx, src.Source)
		if errors.Is(err, context.Canceled) {
			return
		}
		p.Send(feedDoneMsg{stats: stats, err: err})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

type source struct {
	feed.Source
	label     string
	usesStdin bool
	close     func()
}

// openSource picks the feed: the session queue when SESSION_ID is set,
// otherwise the feed file, otherwise stdin.
func openSource(ctx context.Context, cfg *config.Config, sess *session.Session, log *slog.Logger) (*source, error) {
	switch {
	case cfg.SessionID != uuid.Nil:
		client, err := queue.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to queue: %w", err)
		}
		sess.SetID(cfg.SessionID)

		snap, err := storage.NewRedisStorage(client.GetRedisClient(), 0, log).LoadSnapshot(ctx, cfg.SessionID)
		if err != nil {
			log.Warn("Ignoring unreadable snapshot", "error", err)
		} else if snap != nil {
			sess.Restore(snap.Game, snap.Lines)
		}

		return &source{
			Source: queue.NewFeedSourceAdapter(queue.NewFeedQueue(client), cfg.SessionID, log),
			label:  "session " + cfg.SessionID.String(),
			close: func() {
				if err := client.Close(); err != nil {
					log.Error("Error closing queue client", "error", err)
				}
			},
		}, nil

	case cfg.FeedFile != "":
		f, err := os.Open(cfg.FeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open feed: %w", err)
		}
		return &source{
			Source: feed.NewReaderSource(f),
			label:  cfg.FeedFile,
			close:  func() { _ = f.Close() },
		}, nil

	default:
		return &source{
			Source:    feed.NewReaderSource(os.Stdin),
			label:     "stdin",
			usesStdin: true,
			close:     func() {},
		}, nil
	}
}
