// Package logview is the terminal status engine for the auto-trader: it
// tracks concurrently in-flight trade flows, renders them as live-updating
// bordered panels on a single shared terminal region, and provides tag
// sessions and one-shot static log entries as simpler output modes.
//
// All public operations are synchronous, thread safe, and never fail: an
// unresolved flow or tag degrades to a static fallback entry, and calls
// made after the target has been retired are safe no-ops.
package logview

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// TagPolicy controls what StartTag does when a live session already exists
// for the same tag.
type TagPolicy int

const (
	// TagReplace discards the prior session and starts fresh.
	TagReplace TagPolicy = iota
	// TagReject keeps the prior session and ignores the new start.
	TagReject
)

// Logger multiplexes trade flows, tag sessions and static entries onto one
// terminal stream. A single mutex guards every piece of mutable state so
// that renders are never torn by interleaved mutations and cross-component
// invariants (last flow removed => surface retired) hold atomically.
type Logger struct {
	mu sync.Mutex

	out       io.Writer
	surf      surface
	mkSurface func(*Logger) surface
	now       func() time.Time
	tagPolicy TagPolicy
	fps       int

	inst string
	seq  int

	flows     map[string]*flow
	flowOrder []*flow // creation order; last entry is the "current" flow
	orders    map[string]*flow

	tags    map[string]*TagSession
	liveTag string
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput directs all rendering to w. When w is not a terminal the live
// region falls back to plain sequential output.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

// WithTagPolicy sets the StartTag collision policy.
func WithTagPolicy(p TagPolicy) Option {
	return func(l *Logger) { l.tagPolicy = p }
}

// WithFPS caps the live region's repaint rate. Non-positive values keep
// the default.
func WithFPS(fps int) Option {
	return func(l *Logger) { l.fps = fps }
}

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithSurface overrides live-surface construction, for tests.
func WithSurface(mk func(*Logger) surface) Option {
	return func(l *Logger) { l.mkSurface = mk }
}

// New returns a Logger writing to stdout unless configured otherwise.
func New(opts ...Option) *Logger {
	l := &Logger{
		out:    os.Stdout,
		now:    time.Now,
		inst:   strings.SplitN(uuid.NewString(), "-", 2)[0],
		flows:  make(map[string]*flow),
		orders: make(map[string]*flow),
		tags:   make(map[string]*TagSession),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fps <= 0 {
		l.fps = liveFPS
	}
	if l.mkSurface == nil {
		l.mkSurface = newSurface
	}
	return l
}

// ---------------------------------------------------------------------------
// Package-level default instance
// ---------------------------------------------------------------------------

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Default returns the shared Logger, creating it on first use.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New()
	}
	return defaultLogger
}

// SetDefault replaces the shared Logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// ResetDefault drops the shared Logger so the next Default call builds a
// fresh one.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = nil
}

// Timestamp formats t the way every entry header does.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// ---------------------------------------------------------------------------
// Shared internals (callers hold l.mu)
// ---------------------------------------------------------------------------

func (l *Logger) ensureSurfaceLocked() {
	if l.surf == nil {
		l.surf = l.mkSurface(l)
	}
}

// refreshLocked pushes a freshly rendered composite frame to the surface.
func (l *Logger) refreshLocked() {
	if l.surf == nil {
		return
	}
	l.surf.update(l.renderCompositeLocked())
}

// retireSurfaceLocked shuts the surface down, leaving final as the frozen
// last frame, when nothing live remains.
func (l *Logger) retireSurfaceLocked(final string) {
	if l.surf == nil {
		return
	}
	s := l.surf
	l.surf = nil
	s.stop(final)
}

// emitLocked writes a one-shot block of text: above the live region while a
// surface is active, straight to the output otherwise. A blank separator
// line follows either way.
func (l *Logger) emitLocked(text string) {
	if l.surf != nil {
		l.surf.println(text + "\n")
		return
	}
	fmt.Fprintln(l.out, text)
	fmt.Fprintln(l.out)
}

// snapshotFrame renders the current composite for the surface's refresh
// ticker. It takes the lock itself: the ticker runs on its own goroutine.
func (l *Logger) snapshotFrame() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.surf == nil {
		return ""
	}
	return l.renderCompositeLocked()
}

func (l *Logger) renderCompositeLocked() string {
	parts := make([]string, 0, len(l.flowOrder)+1)
	if l.liveTag != "" {
		if s := l.tags[l.liveTag]; s != nil {
			parts = append(parts, renderTagSafe(s, l.now()))
		}
	}
	for _, f := range l.flowOrder {
		parts = append(parts, renderFlowSafe(f))
	}
	return strings.Join(parts, "\n")
}
