// Package progress reports catalog run progress to the operator.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/okian/vidmatch/internal/domain/types"
	"github.com/okian/vidmatch/pkg/logger"
)

// Progress modes.
const (
	ModeAuto = "auto"
	ModeBar  = "bar"
	ModeLog  = "log"
	ModeOff  = "off"
)

const titleWidth = 20

// Reporter receives one call per finished record.
type Reporter interface {
	Start(total int)
	Record(title string, snapshot types.Summary)
	Finish(summary types.Summary)
}

// New picks a reporter for mode. In auto mode a bar is drawn when w is a
// terminal and log lines are emitted otherwise.
func New(mode string, w io.Writer, interval time.Duration) Reporter {
	switch mode {
	case ModeOff:
		return Nop{}
	case ModeBar:
		return NewBar(w)
	case ModeLog:
		return NewLog(interval)
	default:
		if IsTerminal(w) {
			return NewBar(w)
		}
		return NewLog(interval)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Nop discards progress.
type Nop struct{}

func (Nop) Start(int)                    {}
func (Nop) Record(string, types.Summary) {}
func (Nop) Finish(types.Summary)         {}

// Bar draws a terminal progress bar with the current title and the running
// match count.
type Bar struct {
	w   io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBar creates a bar reporter writing to w.
func NewBar(w io.Writer) *Bar {
	return &Bar{w: w}
}

func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription("matching"),
		progressbar.OptionSetItsString("rec"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(b.w) }),
	)
}

func (b *Bar) Record(title string, s types.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		return
	}
	b.bar.Describe(fmt.Sprintf("%-*s matched=%d", titleWidth, truncate(title, titleWidth), s.Matched))
	_ = b.bar.Add(1)
}

func (b *Bar) Finish(types.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Log emits a progress line at most once per interval, plus one at the end.
type Log struct {
	interval time.Duration
	log      logger.Logger

	mu   sync.Mutex
	last time.Time
}

// NewLog creates a log reporter.
func NewLog(interval time.Duration) *Log {
	return &Log{interval: interval, log: logger.Get().Named("progress")}
}

func (l *Log) Start(total int) {
	l.mu.Lock()
	l.last = time.Now()
	l.mu.Unlock()
	l.log.Info(context.Background(), "run started", logger.Int("records", total))
}

func (l *Log) Record(title string, s types.Summary) {
	l.mu.Lock()
	due := time.Since(l.last) >= l.interval
	if due {
		l.last = time.Now()
	}
	l.mu.Unlock()
	if !due {
		return
	}
	l.log.Info(context.Background(), "progress",
		logger.Int("processed", s.Processed),
		logger.Int("total", s.Total),
		logger.Int("matched", s.Matched),
		logger.Int("failed", s.Failed),
		logger.String("last", title))
}

func (l *Log) Finish(s types.Summary) {
	l.log.Info(context.Background(), "run finished",
		logger.Int("processed", s.Processed),
		logger.Int("matched", s.Matched),
		logger.Int("unmatched", s.Unmatched),
		logger.Int("failed", s.Failed),
		logger.Int("persisted", s.Persisted),
		logger.Duration("elapsed", s.Elapsed))
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
