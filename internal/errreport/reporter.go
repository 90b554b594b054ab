package errreport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// suppressedPhrases are message fragments for expected, non-actionable
// states: the account is awaiting approval or the user simply mistyped a
// credential. These must not be logged as errors nor double-alerted.
var suppressedPhrases = []string{
	"pending approval",
	"approval pending",
	"awaiting approval",
	"account not approved",
	"invalid credentials",
	"invalid email or password",
}

// Notifier is the platform display capability: a modal alert plus an
// optional post-acknowledgement redirect.
type Notifier interface {
	Alert(message string)
	Navigate(path string)
}

// NopNotifier discards all display requests.
type NopNotifier struct{}

var _ Notifier = NopNotifier{}

func (NopNotifier) Alert(string)    {}
func (NopNotifier) Navigate(string) {}

// Options shape a single Handle call.
type Options struct {
	// Level is the requested visibility; defaults to LevelError.
	Level Level
	// Source is the producing layer; defaults to SourceUnknown.
	Source Source
	// Context is arbitrary structured detail carried on the record and log.
	Context map[string]any
	// NavigationPath, when set, is followed after the alert is acknowledged.
	NavigationPath string
	// ApprovalRelated forces suppression regardless of message content.
	ApprovalRelated bool
	// SkipAlert logs without displaying, for callers that render the
	// failure themselves.
	SkipAlert bool
}

// Reporter classifies errors. Each call is an independent
// suppress -> log -> display decision; no state is kept between calls.
type Reporter struct {
	log      *slog.Logger
	notifier Notifier
	sentryOn bool
	now      func() time.Time
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		if l != nil {
			r.log = l
		}
	}
}

// WithNotifier sets the display capability. Defaults to NopNotifier.
func WithNotifier(n Notifier) ReporterOption {
	return func(r *Reporter) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithSentry enables forwarding of error and critical records to Sentry.
// The caller is responsible for sentry.Init.
func WithSentry(enabled bool) ReporterOption {
	return func(r *Reporter) {
		r.sentryOn = enabled
	}
}

// WithNow sets the time provider (for testing).
func WithNow(fn func() time.Time) ReporterOption {
	return func(r *Reporter) {
		r.now = fn
	}
}

// NewReporter creates a Reporter with production defaults.
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		log:      slog.Default(),
		notifier: NopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle classifies err. A nil err yields a silent empty record.
func (r *Reporter) Handle(err error, opts Options) Record {
	if err == nil {
		return Record{Level: LevelSilent, Source: normalizeSource(opts.Source), Timestamp: r.now().UTC()}
	}
	return r.handle(err.Error(), opts)
}

// HandleMessage classifies a raw message string.
func (r *Reporter) HandleMessage(msg string, opts Options) Record {
	return r.handle(msg, opts)
}

// handle runs the suppress -> log -> display pipeline. A panic anywhere in
// the pipeline degrades to a best-effort stderr line; classification must
// never take the caller down.
func (r *Reporter) handle(msg string, opts Options) (rec Record) {
	defer func() {
		if p := recover(); p != nil {
			fmt.Fprintf(os.Stderr, "errreport: classification panic: %v (message: %s)\n", p, msg)
			rec = Record{
				Message:   msg,
				Level:     LevelSilent,
				Source:    SourceUnknown,
				Timestamp: time.Now().UTC(),
			}
		}
	}()

	rec = Record{
		Message:        msg,
		Level:          normalizeLevel(opts.Level),
		Source:         normalizeSource(opts.Source),
		Timestamp:      r.now().UTC(),
		Context:        opts.Context,
		NavigationPath: opts.NavigationPath,
	}

	if opts.ApprovalRelated || matchesSuppressed(msg) {
		rec.Level = LevelSilent
		rec.Suppressed = true
		return rec
	}

	r.logRecord(rec)
	r.forward(rec)

	if rec.Level == LevelSilent || rec.Level == LevelInfo || opts.SkipAlert {
		return rec
	}

	r.notifier.Alert(rec.Message)
	if rec.NavigationPath != "" {
		r.notifier.Navigate(rec.NavigationPath)
	}
	return rec
}

// logRecord emits the structured log line tagged by source and level.
func (r *Reporter) logRecord(rec Record) {
	attrs := []any{
		slog.String("source", string(rec.Source)),
	}
	for k, v := range rec.Context {
		attrs = append(attrs, slog.Any(k, v))
	}

	switch rec.Level {
	case LevelSilent:
	case LevelInfo:
		r.log.Info(rec.Message, attrs...)
	case LevelWarning:
		r.log.Warn(rec.Message, attrs...)
	default:
		r.log.Error(rec.Message, attrs...)
	}
}

// forward ships error and critical records to Sentry when enabled.
// Suppressed records never reach this point.
func (r *Reporter) forward(rec Record) {
	if !r.sentryOn {
		return
	}
	if rec.Level != LevelError && rec.Level != LevelCritical {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("source", string(rec.Source))
		if rec.Level == LevelCritical {
			scope.SetLevel(sentry.LevelFatal)
		} else {
			scope.SetLevel(sentry.LevelError)
		}
		for k, v := range rec.Context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureMessage(rec.Message)
	})
}

// matchesSuppressed reports whether msg matches the benign phrase set.
func matchesSuppressed(msg string) bool {
	lower := strings.ToLower(msg)
	for _, phrase := range suppressedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func normalizeLevel(l Level) Level {
	switch l {
	case LevelSilent, LevelInfo, LevelWarning, LevelError, LevelCritical:
		return l
	default:
		return LevelError
	}
}

func normalizeSource(s Source) Source {
	switch s {
	case SourceAPI, SourceAuth, SourceUI, SourceStorage, SourceNetwork, SourceForm:
		return s
	default:
		return SourceUnknown
	}
}
