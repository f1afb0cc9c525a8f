package logview

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// surface is the single live terminal region shared by every active flow
// and the live tag session. The engine renders complete frames under its
// own lock; a surface only paints the latest frame it was handed.
type surface interface {
	// update replaces the live frame.
	update(frame string)
	// println writes a finished block into scrollback above the live frame.
	println(text string)
	// stop freezes final in place and releases the region.
	stop(final string)
}

// liveFPS is the default repaint rate when no WithFPS option is given.
const liveFPS = 10

// refreshEvery is the ticker cadence matching a repaint rate.
func refreshEvery(fps int) time.Duration {
	if fps <= 0 {
		fps = liveFPS
	}
	return time.Second / time.Duration(fps)
}

// newSurface picks the live bubbletea region on real terminals and a plain
// sequential writer everywhere else (pipes, CI, tests).
func newSurface(l *Logger) surface {
	if f, ok := l.out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return newTeaSurface(l.out, l.fps, l.snapshotFrame)
	}
	return &writerSurface{w: l.out}
}

// ---------------------------------------------------------------------------
// bubbletea-backed live region
// ---------------------------------------------------------------------------

type frameMsg string
type finalMsg string

// liveModel displays whichever frame the engine last produced. It holds no
// engine references, so the program's goroutines never contend for the
// engine lock and stop can wait on the program while the lock is held.
type liveModel struct {
	frame string
}

func (m liveModel) Init() tea.Cmd { return nil }

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = string(msg)
	case finalMsg:
		m.frame = string(msg)
		return m, tea.Quit
	}
	return m, nil
}

func (m liveModel) View() string { return m.frame }

type teaSurface struct {
	p        *tea.Program
	done     chan struct{}
	stopTick chan struct{}
	stopOnce sync.Once
}

func newTeaSurface(out io.Writer, fps int, refresh func() string) *teaSurface {
	s := &teaSurface{
		done:     make(chan struct{}),
		stopTick: make(chan struct{}),
	}
	s.p = tea.NewProgram(liveModel{},
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithFPS(fps),
		tea.WithoutSignalHandler(),
	)
	go func() {
		defer close(s.done)
		_, _ = s.p.Run()
	}()
	// Repaint on a fixed cadence so spinners animate and bursts of
	// mutations coalesce into at most fps visible frames a second.
	go func() {
		t := time.NewTicker(refreshEvery(fps))
		defer t.Stop()
		for {
			select {
			case <-s.stopTick:
				return
			case <-t.C:
				if frame := refresh(); frame != "" {
					s.p.Send(frameMsg(frame))
				}
			}
		}
	}()
	return s
}

func (s *teaSurface) update(frame string) {
	s.p.Send(frameMsg(frame))
}

func (s *teaSurface) println(text string) {
	s.p.Println(text)
}

func (s *teaSurface) stop(final string) {
	s.stopOnce.Do(func() {
		close(s.stopTick)
		s.p.Send(finalMsg(final))
		<-s.done
	})
}

// ---------------------------------------------------------------------------
// Plain sequential fallback
// ---------------------------------------------------------------------------

// writerSurface degrades the live region for non-terminal outputs: frames
// are not repainted in place, finished blocks print as they complete and
// the final frame prints once on stop. No state is lost, only the live
// refresh cadence.
type writerSurface struct {
	w io.Writer
}

func (s *writerSurface) update(string) {}

func (s *writerSurface) println(text string) {
	fmt.Fprintln(s.w, text)
}

func (s *writerSurface) stop(final string) {
	if final != "" {
		fmt.Fprintln(s.w, final)
	}
}
