package logview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Everything in this file is a pure transformation from engine state to
// text. Rendering never mutates state; the safe wrappers recover from any
// render-boundary panic and fall back to a plain unstyled rendition so a
// presentation bug can never take the host process down with it.

// ---------------------------------------------------------------------------
// Elapsed badges
// ---------------------------------------------------------------------------

const (
	tierLow = iota
	tierMid
	tierHigh
)

// elapsedTier buckets a stage offset: under a second is routine, under
// three seconds is slow, beyond that something is dragging.
func elapsedTier(d time.Duration) int {
	switch ms := d.Milliseconds(); {
	case ms < 1000:
		return tierLow
	case ms < 3000:
		return tierMid
	default:
		return tierHigh
	}
}

func elapsedBadge(d time.Duration) string {
	text := fmt.Sprintf("[+%dms]", d.Milliseconds())
	switch elapsedTier(d) {
	case tierLow:
		return badgeLowStyle.Render(text)
	case tierMid:
		return badgeMidStyle.Render(text)
	default:
		return badgeHighStyle.Render(text)
	}
}

// ---------------------------------------------------------------------------
// Stages and flow panels
// ---------------------------------------------------------------------------

func stageHeader(epoch time.Time, st *stage) string {
	elems := []string{tsStyle.Render(Timestamp(epoch.Add(st.elapsed)))}
	ms := st.elapsed.Milliseconds()
	if ms > 0 {
		elems = append(elems, elapsedBadge(st.elapsed))
	} else if st.suffix != "" {
		elems = append(elems, st.suffix)
	}
	elems = append(elems, st.style.lip(infoStyle).Render("["+st.tag+"]"))
	if ms > 0 && st.suffix != "" {
		elems = append(elems, suffixStyle.Render(st.suffix))
	}
	return strings.Join(elems, " ")
}

// stageRows renders detail rows. Consecutive keyed rows form one aligned
// two-column block; an unkeyed row flushes the open block and stands
// alone. The interleaving holds for arbitrary key/no-key sequences.
func stageRows(rows []Row) []string {
	var out []string
	var group []Row

	flush := func() {
		if len(group) == 0 {
			return
		}
		w := 0
		for _, r := range group {
			if kw := runewidth.StringWidth(r.Key); kw > w {
				w = kw
			}
		}
		for _, r := range group {
			pad := r.Key + strings.Repeat(" ", w-runewidth.StringWidth(r.Key))
			if r.Style == StyleMuted {
				out = append(out, mutedStyle.Render("  - "+pad+": "+r.Value))
			} else {
				out = append(out, "  - "+keyStyle.Render(pad)+": "+r.Style.lip(lipgloss.NewStyle()).Render(r.Value))
			}
		}
		group = nil
	}

	for _, r := range rows {
		if r.Key != "" {
			group = append(group, r)
			continue
		}
		flush()
		if r.Value == "" {
			// malformed caller data; drop rather than rendering a bare dash
			continue
		}
		if r.Style == StyleMuted {
			out = append(out, mutedStyle.Render("  - "+r.Value))
		} else {
			out = append(out, "  - "+r.Style.lip(lipgloss.NewStyle()).Render(r.Value))
		}
	}
	flush()
	return out
}

func renderFlow(f *flow) string {
	blocks := make([]string, 0, len(f.stages))
	for _, st := range f.stages {
		lines := append([]string{stageHeader(f.epoch, st)}, stageRows(st.rows)...)
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	inner := 0
	for _, b := range blocks {
		if w := lipgloss.Width(b); w > inner {
			inner = w
		}
	}
	div := dividerStyle.Render(strings.Repeat("─", inner))
	return panelStyle.Render(strings.Join(blocks, "\n"+div+"\n"))
}

func renderFlowSafe(f *flow) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = plainFlow(f)
		}
	}()
	return renderFlow(f)
}

// ---------------------------------------------------------------------------
// Tag session blocks
// ---------------------------------------------------------------------------

var spinFrames = spinner.MiniDot

func spinnerGlyph(started, now time.Time) string {
	if len(spinFrames.Frames) == 0 {
		return ""
	}
	i := int(now.Sub(started)/spinFrames.FPS) % len(spinFrames.Frames)
	if i < 0 {
		i = 0
	}
	return warnStyle.Render(spinFrames.Frames[i])
}

func renderTag(s *TagSession, now time.Time) string {
	header := tsStyle.Render(Timestamp(s.Started)) + " " +
		s.Style.lip(warnStyle).Render("["+s.Tag+"]")
	if s.Live && s.Spinner {
		header += " " + spinnerGlyph(s.Started, now)
	}
	lines := []string{header}
	for _, ln := range s.Lines {
		prefix := "    " + strings.Repeat("  ", ln.Level) + "- "
		if ln.Level == 0 {
			lines = append(lines, prefix+tsStyle.Render(Timestamp(ln.Time))+" "+detailStyle.Render(ln.Text))
		} else {
			lines = append(lines, prefix+detailStyle.Render(ln.Text))
		}
	}
	return strings.Join(lines, "\n")
}

func renderTagSafe(s *TagSession, now time.Time) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = plainTag(s)
		}
	}()
	return renderTag(s, now)
}

// ---------------------------------------------------------------------------
// Static entries
// ---------------------------------------------------------------------------

func renderStatic(e Entry, now time.Time) string {
	ts := Timestamp(now)
	label := "[" + e.Tag + "]"
	parts := []string{tsStyle.Render(ts), e.TagStyle.lip(warnStyle).Render(label)}
	if e.Header != "" {
		parts = append(parts, e.Header)
	}
	for _, x := range e.Extra {
		if x != "" {
			parts = append(parts, x)
		}
	}
	lines := []string{strings.Join(parts, " ")}

	indent := strings.Repeat(" ", len(ts)+1+runewidth.StringWidth(label)+1)
	for _, d := range e.Details {
		switch {
		case d.Key != "":
			lines = append(lines, indent+keyStyle.Render(d.Key)+": "+valueStyle.Render(d.Text))
		case d.Style != StyleNone:
			lines = append(lines, indent+d.Style.lip(detailStyle).Render(d.Text))
		default:
			lines = append(lines, indent+detailStyle.Render(d.Text))
		}
	}
	return strings.Join(lines, "\n")
}

func renderStaticSafe(e Entry, now time.Time) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = plainStatic(e, now)
		}
	}()
	return renderStatic(e, now)
}

// ---------------------------------------------------------------------------
// Plain fallbacks: same structural content, zero styling
// ---------------------------------------------------------------------------

func plainFlow(f *flow) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	for _, st := range f.stages {
		if st == nil {
			continue
		}
		fmt.Fprintf(&b, "%s [+%dms] [%s]", Timestamp(f.epoch.Add(st.elapsed)), st.elapsed.Milliseconds(), st.tag)
		if st.suffix != "" {
			b.WriteString(" " + st.suffix)
		}
		b.WriteString("\n")
		for _, r := range st.rows {
			if r.Key != "" {
				fmt.Fprintf(&b, "  - %s: %s\n", r.Key, r.Value)
			} else if r.Value != "" {
				fmt.Fprintf(&b, "  - %s\n", r.Value)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func plainTag(s *TagSession) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", Timestamp(s.Started), s.Tag)
	for _, ln := range s.Lines {
		fmt.Fprintf(&b, "    %s- %s\n", strings.Repeat("  ", ln.Level), ln.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func plainStatic(e Entry, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]", Timestamp(now), e.Tag)
	if e.Header != "" {
		b.WriteString(" " + e.Header)
	}
	for _, x := range e.Extra {
		if x != "" {
			b.WriteString(" " + x)
		}
	}
	for _, d := range e.Details {
		b.WriteString("\n    ")
		if d.Key != "" {
			b.WriteString(d.Key + ": ")
		}
		b.WriteString(d.Text)
	}
	return b.String()
}
