package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/jwebster45206/feed-engine/internal/config"
	"github.com/jwebster45206/feed-engine/internal/logger"
	"github.com/jwebster45206/feed-engine/internal/services/queue"
	"github.com/jwebster45206/feed-engine/internal/storage"
	queuePkg "github.com/jwebster45206/feed-engine/pkg/queue"
)

const batchSize = 500

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	flags := pflag.NewFlagSet("enqueue", pflag.ContinueOnError)
	sessionFlag := flags.StringP("session", "s", "", "session id (default SESSION_ID, then a new id)")
	format := flags.String("format", string(queuePkg.LineFormatRecorded), "line format: recorded or text")
	delay := flags.Duration("delay", 0, "pause between batches, to simulate a live feed")
	clearFirst := flags.Bool("clear", false, "clear the session queue and its snapshot before enqueueing")
	keep := flags.Int("keep", 0, "after enqueueing, drop the oldest lines so at most N remain queued")
	peek := flags.Int("peek", 0, "print up to N queued lines and exit; 0 or less prints all")
	drain := flags.Bool("drain", false, "remove and print every queued line, then exit")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: enqueue [flags] [feed-file]\n\nPushes feed lines onto a session queue. Reads stdin without a file.\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}

	lineFormat := queuePkg.LineFormat(*format)
	if lineFormat != queuePkg.LineFormatRecorded && lineFormat != queuePkg.LineFormatText {
		return fmt.Errorf("unknown format %q", *format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.SetupWriter(cfg, os.Stderr)

	sessionID := cfg.SessionID
	if *sessionFlag != "" {
		if sessionID, err = uuid.Parse(*sessionFlag); err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}
	}
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}
	log = logger.WithSession(log, sessionID)

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
	}

	ctx := context.Background()
	client, err := queue.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	fq := queue.NewFeedQueue(client)

	fmt.Fprintf(stdout, "Connected to Redis, session %s\n", sessionID)

	switch {
	case *drain:
		lines, err := fq.Dequeue(ctx, sessionID)
		if err != nil {
			return err
		}
		printLines(stdout, lines)
		fmt.Fprintf(stdout, "Drained %d lines\n", len(lines))
		return nil
	case flags.Changed("peek"):
		lines, err := fq.Peek(ctx, sessionID, *peek)
		if err != nil {
			return err
		}
		printLines(stdout, lines)
		return nil
	}

	if *clearFirst {
		if err := fq.Clear(ctx, sessionID); err != nil {
			return err
		}
		if err := storage.NewRedisStorage(client.GetRedisClient(), 0, log).DeleteSnapshot(ctx, sessionID); err != nil {
			return err
		}
	}

	total, lastSeq, err := enqueueAll(ctx, fq, sessionID, lineFormat, in, *delay)
	if err != nil {
		return fmt.Errorf("enqueued %d lines before failing: %w", total, err)
	}

	if flags.Changed("keep") {
		if err := fq.Trim(ctx, sessionID, *keep); err != nil {
			return err
		}
	}

	depth, err := fq.Depth(ctx, sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Enqueued %d lines (last seq %d), queue depth %d\n", total, lastSeq, depth)
	fmt.Fprintf(stdout, "Run the worker with SESSION_ID=%s to consume them\n", sessionID)
	return nil
}

func printLines(w io.Writer, lines []*queuePkg.FeedLine) {
	for _, l := range lines {
		fmt.Fprintf(w, "%d\t%s\t%s\n", l.Seq, l.Format, l.Line)
	}
}

// enqueueAll pushes lines in batches, preserving order
func enqueueAll(ctx context.Context, fq *queue.FeedQueue, sessionID uuid.UUID, format queuePkg.LineFormat, in io.Reader, delay time.Duration) (int, int64, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		total   int
		lastSeq int64
		batch   = make([]string, 0, batchSize)
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		seq, err := fq.EnqueueLines(ctx, sessionID, format, batch)
		if err != nil {
			return err
		}
		total += len(batch)
		lastSeq = seq
		batch = batch[:0]
		if delay > 0 {
			time.Sleep(delay)
		}
		return nil
	}

	for scanner.Scan() {
		batch = append(batch, scanner.Text())
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, lastSeq, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return total, lastSeq, err
	}
	if err := flush(); err != nil {
		return total, lastSeq, err
	}
	return total, lastSeq, nil
}
