package logview

import "time"

// TagLine is one appended line within a tag session.
type TagLine struct {
	Time  time.Time
	Text  string
	Level int
}

// TagSession is an append-only labeled line group. Unlike flows, at most
// one session renders live at a time; stopped sessions stay queryable.
type TagSession struct {
	Tag     string
	Started time.Time
	Style   Style
	Spinner bool
	Live    bool
	Lines   []TagLine
}

type tagOpts struct {
	style     Style
	noSpinner bool
}

// TagOption customises StartTag.
type TagOption func(*tagOpts)

// TagStyled sets the session's header style.
func TagStyled(s Style) TagOption {
	return func(o *tagOpts) { o.style = s }
}

// NoSpinner suppresses the activity indicator.
func NoSpinner() TagOption {
	return func(o *tagOpts) { o.noSpinner = true }
}

// StartTag opens a live tag session and attaches it to the shared surface.
// A live session already holding the tag is replaced or kept per the
// configured TagPolicy.
func (l *Logger) StartTag(tag string, opts ...TagOption) {
	var o tagOpts
	for _, opt := range opts {
		opt(&o)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev := l.tags[tag]; prev != nil && prev.Live && l.tagPolicy == TagReject {
		return
	}
	l.tags[tag] = &TagSession{
		Tag:     tag,
		Started: l.now(),
		Style:   o.style,
		Spinner: !o.noSpinner,
		Live:    true,
	}
	l.liveTag = tag
	l.ensureSurfaceLocked()
	l.refreshLocked()
}

// AppendTag records a timestamped line at the given indent level. An
// unknown or already-stopped tag degrades to a static entry carrying the
// tag and content verbatim.
func (l *Logger) AppendTag(tag, content string, level int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.tags[tag]
	if s == nil || !s.Live {
		l.emitLocked(renderStaticSafe(Entry{Tag: tag, Header: content}, l.now()))
		return
	}
	s.Lines = append(s.Lines, TagLine{Time: l.now(), Text: content, Level: level})
	if l.liveTag == tag {
		l.refreshLocked()
	}
}

// StopTag clears the activity indicator, freezes the session's content in
// the terminal and detaches it from the live surface.
func (l *Logger) StopTag(tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.tags[tag]
	if s == nil {
		return
	}
	s.Spinner = false
	s.Live = false
	if l.liveTag != tag {
		return
	}
	l.liveTag = ""
	block := renderTagSafe(s, l.now())
	if len(l.flows) == 0 {
		l.retireSurfaceLocked(block)
		return
	}
	if l.surf != nil {
		l.surf.println(block)
	}
	l.refreshLocked()
}

// TagState returns a snapshot of the session for tag, or nil.
func (l *Logger) TagState(tag string) *TagSession {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.tags[tag]
	if s == nil {
		return nil
	}
	cp := *s
	cp.Lines = append([]TagLine(nil), s.Lines...)
	return &cp
}

// RefreshTag repaints the live surface if tag is the live session. Callers
// that mutate shared data a session displays use this to force a frame.
func (l *Logger) RefreshTag(tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.liveTag == tag {
		l.refreshLocked()
	}
}
