package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jwebster45206/feed-engine/internal/config"
	"github.com/jwebster45206/feed-engine/internal/feed"
	"github.com/jwebster45206/feed-engine/internal/logger"
	"github.com/jwebster45206/feed-engine/internal/session"
	"github.com/jwebster45206/feed-engine/pkg/state"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	flags := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	layoutFile := flags.StringP("layout", "l", "", "layout YAML file (default LAYOUT_FILE, then built-in)")
	tail := flags.IntP("tail", "n", 20, "number of trailing lines to print per text widget")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: replay [flags] [feed-file]\n\nReplays a recorded feed and prints the resulting widget state.\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *layoutFile != "" {
		cfg.LayoutFile = *layoutFile
	}
	log := logger.SetupWriter(cfg, os.Stderr)

	defs, err := config.LoadLayout(cfg.LayoutFile)
	if err != nil {
		return err
	}
	config.CapLines(defs, cfg.MaxLines)

	in := stdin
	if path := flags.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open feed: %w", err)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		in = f
	} else if cfg.FeedFile != "" {
		f, err := os.Open(cfg.FeedFile)
		if err != nil {
			return fmt.Errorf("failed to open feed: %w", err)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := session.New(defs, nil, log)
	stats, err := feed.NewPump(sess, log, feed.Options{}).Run(ctx, feed.NewReaderSource(in))
	if err != nil {
		return fmt.Errorf("replay stopped after %d lines: %w", stats.Lines, err)
	}

	fmt.Fprintf(stdout, "Replayed %d lines, %d events\n\n", stats.Lines, stats.Events)
	sess.View(func(reg *widget.Registry, gs *state.GameState) {
		summarize(stdout, reg, gs, *tail)
	})
	return nil
}

// summarize prints one block per widget
func summarize(w io.Writer, reg *widget.Registry, gs *state.GameState, tail int) {
	if title := gs.Room.Title; title != "" {
		fmt.Fprintf(w, "Room: %s\n\n", title)
	}
	for _, wd := range reg.Widgets() {
		fmt.Fprintf(w, "== %s (%s)\n", wd.Name, wd.Kind)
		switch c := wd.Content.(type) {
		case *widget.TextContent:
			printTail(w, c.Buffer, tail)
		case *widget.TabbedContent:
			for _, tab := range c.Tabs {
				fmt.Fprintf(w, "-- %s\n", tab.Name)
				printTail(w, tab.Buffer, tail)
			}
		case *widget.ProgressContent:
			fmt.Fprintf(w, "%d/%d %s\n", c.Value, c.Max, c.Label)
		case *widget.CountdownContent:
			fmt.Fprintf(w, "ends at %d\n", c.EndTime)
		case *widget.IndicatorContent:
			fmt.Fprintf(w, "active=%t\n", c.Active)
		case *widget.CompassContent:
			fmt.Fprintf(w, "%s\n", strings.Join(c.Directions, " "))
		case *widget.HandContent:
			fmt.Fprintf(w, "%s\n", c.Item)
		case *widget.HandsContent:
			fmt.Fprintf(w, "left=%q right=%q spell=%q\n", c.Left.Item, c.Right.Item, c.Spell.Item)
		case *widget.InjuryContent:
			parts := make([]string, 0, len(c.Levels))
			for part, level := range c.Levels {
				if level > widget.InjuryNone {
					parts = append(parts, fmt.Sprintf("%s=%d", part, level))
				}
			}
			sort.Strings(parts)
			fmt.Fprintf(w, "%s\n", strings.Join(parts, " "))
		case *widget.EffectsContent:
			for _, e := range c.Effects {
				fmt.Fprintf(w, "[%s] %s %d%% %s\n", e.Category, e.Text, e.Value, e.Time)
			}
		case *widget.DashboardContent:
			for _, ind := range c.Indicators {
				fmt.Fprintf(w, "%s=%t\n", ind.ID, ind.Active)
			}
		case *widget.RoomContent:
			for _, text := range []string{c.Name, c.Description, c.Objects, c.Players, c.Exits} {
				if text != "" {
					fmt.Fprintln(w, text)
				}
			}
		case *widget.RosterContent:
			fmt.Fprintf(w, "%s\n", strings.Join(gs.Roster(c.Roster), ", "))
		}
		fmt.Fprintln(w)
	}
}

func printTail(w io.Writer, buf *widget.TextBuffer, n int) {
	lines := buf.Strings()
	if n >= 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
