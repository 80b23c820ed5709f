// Package feed moves raw feed lines from a source into a session. Reading runs
// on its own goroutine; lines are applied one at a time in arrival order.
package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	defaultBuffer  = 256
	maxLineBytes   = 1 << 20
	initialLineBuf = 64 * 1024
)

// Source yields raw feed lines in order. Next returns io.EOF when the feed ends.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// Applier consumes one raw line and reports how many events it carried
type Applier interface {
	ApplyLine(line string) int
}

// ReaderSource reads newline-delimited lines from an io.Reader
type ReaderSource struct {
	scanner *bufio.Scanner
}

// NewReaderSource wraps r. Lines longer than 1 MiB end the feed with an error.
func NewReaderSource(r io.Reader) *ReaderSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuf), maxLineBytes)
	return &ReaderSource{scanner: scanner}
}

// Next implements Source
func (s *ReaderSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read feed: %w", err)
	}
	return "", io.EOF
}

// Stats counts what a pump has applied
type Stats struct {
	Lines  int64
	Events int64
}

// Options tune a Pump. The zero value is usable.
type Options struct {
	// Buffer is the number of lines read ahead of the consumer
	Buffer int
	// OnApplied runs on the consumer goroutine after every line
	OnApplied func(Stats)
}

// Pump reads from a Source and applies each line to an Applier
type Pump struct {
	applier Applier
	opts    Options
	log     *slog.Logger
}

// NewPump creates a pump for an applier
func NewPump(applier Applier, logger *slog.Logger, opts Options) *Pump {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	return &Pump{applier: applier, opts: opts, log: logger}
}

// Run applies lines until the source ends, fails, or ctx is done. A source
// ending with io.EOF is a clean stop and returns a nil error. The reader
// goroutine exits once the source's Next returns.
func (p *Pump) Run(ctx context.Context, src Source) (Stats, error) {
	lines := make(chan string, p.opts.Buffer)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		for {
			line, err := src.Next(ctx)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					errc <- err
				}
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	var stats Stats
	for {
		select {
		case <-ctx.Done():
			p.log.Debug("Feed pump cancelled", "lines", stats.Lines)
			return stats, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					p.log.Error("Feed source failed", "error", err, "lines", stats.Lines)
					return stats, err
				default:
					if err := ctx.Err(); err != nil {
						return stats, err
					}
					p.log.Debug("Feed ended", "lines", stats.Lines, "events", stats.Events)
					return stats, nil
				}
			}
			n := p.applier.ApplyLine(line)
			stats.Lines++
			stats.Events += int64(n)
			if p.opts.OnApplied != nil {
				p.opts.OnApplied(stats)
			}
		}
	}
}
