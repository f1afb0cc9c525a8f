package logview

import (
	"fmt"
	"strings"
)

// Detail is one indented line under a static entry header. A non-empty Key
// renders as a colored "key: value" pair.
type Detail struct {
	Key   string
	Text  string
	Style Style
}

// Entry is a one-shot immutable log entry: timestamp, styled tag label,
// optional header, optional extra header fragments and indented details,
// followed by a blank separator line.
type Entry struct {
	Tag     string
	Header  string
	Extra   []string
	Details []Detail
	// TagStyle defaults to the warning accent, matching ad-hoc alerts.
	TagStyle Style
}

// Log prints a simple static entry.
func (l *Logger) Log(tag, header string, details ...string) {
	e := Entry{Tag: tag, Header: header}
	for _, d := range details {
		e.Details = append(e.Details, Detail{Text: d})
	}
	l.LogEntry(e)
}

// LogEntry prints a fully specified static entry.
func (l *Logger) LogEntry(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emitLocked(renderStaticSafe(e, l.now()))
}

// LogConfig prints a configuration block: key/value lines are colored as
// pairs and lines starting with "!" are raised as warnings.
func (l *Logger) LogConfig(tag string, lines []string) {
	e := Entry{Tag: tag}
	for _, line := range lines {
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "!"):
			e.Details = append(e.Details, Detail{Text: line, Style: StyleError})
		default:
			k, v, ok := splitKV(line)
			if ok {
				e.Details = append(e.Details, Detail{Key: k, Text: v})
			} else {
				e.Details = append(e.Details, Detail{Text: line, Style: StyleMuted})
			}
		}
	}
	l.LogEntry(e)
}

// LogNested prints a tag block with first-level lines and optional
// sub-lines keyed by parent line index.
func (l *Logger) LogNested(tag, suffix string, lines []string, sub map[int][]string) {
	e := Entry{Tag: tag, Header: suffix, TagStyle: StyleNote}
	for i, line := range lines {
		k, v, ok := splitKV(line)
		if ok {
			e.Details = append(e.Details, Detail{Key: k, Text: v})
		} else {
			e.Details = append(e.Details, Detail{Text: line, Style: StyleMuted})
		}
		for _, s := range sub[i] {
			e.Details = append(e.Details, Detail{Text: "  " + s, Style: StyleMuted})
		}
	}
	l.LogEntry(e)
}

// Separator prints a full-width divider between independent output phases.
func (l *Logger) Separator() {
	l.mu.Lock()
	defer l.mu.Unlock()
	text := strings.Repeat("=", 80)
	if l.surf != nil {
		l.surf.println(text)
		return
	}
	fmt.Fprintln(l.out, text)
}

// splitKV splits "key: value" lines on the first colon. Lines whose colon
// is part of a URL or timestamp-looking value stay unsplit only when no
// separator precedes them, which is good enough for config dumps.
func splitKV(line string) (key, value string, ok bool) {
	i := strings.Index(line, ":")
	if i <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}
