package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Logs go to w (stderr in main) so that
// resolve and graph output on stdout stays machine-readable.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command over one manifest. resolve and graph report
// through it once the pipeline returns:
//
//	INFO Resolved 3 libraries manifest=app.deps.json elapsed=12ms
type progress struct {
	logger   *log.Logger
	manifest string
	start    time.Time
}

func newProgress(l *log.Logger, manifest string) *progress {
	return &progress{logger: l, manifest: manifest, start: time.Now()}
}

// done logs msg with the manifest name and the elapsed time, rounded to the
// millisecond.
func (p *progress) done(msg string) {
	p.logger.Info(msg, "manifest", p.manifest, "elapsed", time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx. PersistentPreRunE does this for every
// command.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when a command runs without one (e.g. in tests).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
