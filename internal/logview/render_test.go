package logview

import (
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Elapsed badge tiers
// ---------------------------------------------------------------------------

func TestElapsedTierThresholds(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{500 * time.Millisecond, tierLow},
		{999 * time.Millisecond, tierLow},
		{1000 * time.Millisecond, tierMid},
		{1500 * time.Millisecond, tierMid},
		{2999 * time.Millisecond, tierMid},
		{3000 * time.Millisecond, tierHigh},
		{3500 * time.Millisecond, tierHigh},
	}
	for _, c := range cases {
		if got := elapsedTier(c.d); got != c.want {
			t.Errorf("elapsedTier(%v) = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestElapsedBadgeText(t *testing.T) {
	if got := plain(elapsedBadge(500 * time.Millisecond)); got != "[+500ms]" {
		t.Fatalf("badge = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Stage headers
// ---------------------------------------------------------------------------

func TestStageHeaderShowsSuffixWhenNoElapsed(t *testing.T) {
	epoch := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	st := &stage{tag: "raw", suffix: "[-8153ms]"}
	h := plain(stageHeader(epoch, st))
	if !strings.Contains(h, "[-8153ms]") {
		t.Fatalf("suffix should stand in for the badge: %q", h)
	}
	if strings.Contains(h, "[+0ms]") {
		t.Fatalf("no badge expected at zero elapsed: %q", h)
	}
}

func TestStageHeaderBadgeAndSuffixOrder(t *testing.T) {
	epoch := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	st := &stage{tag: "submit", suffix: "[paper]", elapsed: 1200 * time.Millisecond}
	h := plain(stageHeader(epoch, st))

	badge := strings.Index(h, "[+1200ms]")
	tag := strings.Index(h, "[submit]")
	suffix := strings.Index(h, "[paper]")
	if badge < 0 || tag < 0 || suffix < 0 {
		t.Fatalf("header incomplete: %q", h)
	}
	if !(badge < tag && tag < suffix) {
		t.Fatalf("expected badge, tag, suffix in order: %q", h)
	}
	if !strings.Contains(h, "2026-08-29 10:00:01.200") {
		t.Fatalf("absolute timestamp should be epoch+elapsed: %q", h)
	}
}

// ---------------------------------------------------------------------------
// Row grouping
// ---------------------------------------------------------------------------

func TestStageRowsAlignConsecutiveKeys(t *testing.T) {
	lines := stageRows([]Row{
		{Key: "symbol", Value: "AAPL"},
		{Key: "op", Value: "BUY"},
	})
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	a, b := plain(lines[0]), plain(lines[1])
	if !strings.Contains(a, "symbol: AAPL") {
		t.Fatalf("keyed row malformed: %q", a)
	}
	// "op" is padded to the width of "symbol" so values line up
	if !strings.Contains(b, "op    : BUY") {
		t.Fatalf("short key should be padded within the group: %q", b)
	}
}

func TestStageRowsUnkeyedBreaksGroup(t *testing.T) {
	lines := stageRows([]Row{
		{Key: "alpha", Value: "1"},
		{Value: "standalone line"},
		{Key: "b", Value: "2"},
	})
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if p := plain(lines[1]); p != "  - standalone line" {
		t.Fatalf("standalone row = %q", p)
	}
	// the second group restarts alignment: "b" must not be padded to "alpha"
	if p := plain(lines[2]); !strings.Contains(p, "b: 2") {
		t.Fatalf("post-break keyed row = %q", p)
	}
}

func TestStageRowsArbitraryInterleaving(t *testing.T) {
	lines := stageRows([]Row{
		{Value: "first"},
		{Key: "k1", Value: "v1"},
		{Key: "k2", Value: "v2"},
		{Value: "middle"},
		{Key: "k3", Value: "v3"},
		{Value: "last"},
	})
	var got []string
	for _, l := range lines {
		got = append(got, strings.TrimSpace(plain(l)))
	}
	want := []string{"- first", "- k1: v1", "- k2: v2", "- middle", "- k3: v3", "- last"}
	if len(got) != len(want) {
		t.Fatalf("lines = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStageRowsDropEmptyRows(t *testing.T) {
	lines := stageRows([]Row{{}, {Value: "real"}})
	if len(lines) != 1 {
		t.Fatalf("malformed empty row should be ignored, lines = %d", len(lines))
	}
}

// ---------------------------------------------------------------------------
// Panels and blocks
// ---------------------------------------------------------------------------

func TestRenderFlowDrawsBorderAndDividers(t *testing.T) {
	f := &flow{id: "dom1", epoch: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)}
	f.stages = []*stage{
		{tag: "raw", rows: []Row{{Key: "content", Value: "hello"}}, elapsed: 100 * time.Millisecond},
		{tag: "parsed", rows: []Row{{Value: "BUY X"}}, elapsed: 200 * time.Millisecond},
	}
	out := plain(renderFlow(f))
	if !strings.Contains(out, "╭") || !strings.Contains(out, "╰") {
		t.Fatalf("expected a rounded border: %q", out)
	}
	if !strings.Contains(out, "─────") {
		t.Fatalf("expected a stage divider: %q", out)
	}
	if !strings.Contains(out, "[raw]") || !strings.Contains(out, "[parsed]") {
		t.Fatalf("both stages should render: %q", out)
	}
}

func TestRenderTagLevelsAndTimestamps(t *testing.T) {
	started := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	s := &TagSession{
		Tag:     "loader",
		Started: started,
		Lines: []TagLine{
			{Time: started.Add(time.Second), Text: "top", Level: 0},
			{Time: started.Add(2 * time.Second), Text: "nested", Level: 1},
		},
	}
	lines := strings.Split(plain(renderTag(s, started)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d", len(lines))
	}
	if !strings.Contains(lines[1], "10:00:01") || !strings.Contains(lines[1], "top") {
		t.Fatalf("level-0 line should carry its own timestamp: %q", lines[1])
	}
	if strings.Contains(lines[2], "10:00:02") {
		t.Fatalf("level-1 line should omit the timestamp: %q", lines[2])
	}
	if !strings.HasPrefix(lines[2], "      ") {
		t.Fatalf("level-1 line should indent deeper: %q", lines[2])
	}
}

func TestRenderTagSpinnerOnlyWhileLive(t *testing.T) {
	started := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	live := &TagSession{Tag: "x", Started: started, Live: true, Spinner: true}
	frozen := &TagSession{Tag: "x", Started: started}

	withSpin := plain(renderTag(live, started))
	without := plain(renderTag(frozen, started))
	if withSpin == without {
		t.Fatal("live session should append a spinner glyph")
	}
}

// ---------------------------------------------------------------------------
// Static entries
// ---------------------------------------------------------------------------

func TestRenderStaticLayout(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 123e6, time.UTC)
	out := plain(renderStatic(Entry{
		Tag:    "order push",
		Header: "[BUY]",
		Extra:  []string{"symbol=TEST.US", "price=1.5"},
		Details: []Detail{
			{Key: "status", Text: "New"},
			{Text: "raw detail"},
		},
	}, now))

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "2026-08-29 10:00:00.123 [order push] [BUY] symbol=TEST.US price=1.5") {
		t.Fatalf("header line = %q", lines[0])
	}
	indent := strings.Repeat(" ", len("2026-08-29 10:00:00.123")+1+len("[order push]")+1)
	if lines[1] != indent+"status: New" {
		t.Fatalf("detail line = %q", lines[1])
	}
	if lines[2] != indent+"raw detail" {
		t.Fatalf("detail line = %q", lines[2])
	}
}

// ---------------------------------------------------------------------------
// Plain fallbacks keep the structural content
// ---------------------------------------------------------------------------

func TestRenderFlowSafeFallsBackToPlainRendering(t *testing.T) {
	f := &flow{
		id:    "f1",
		epoch: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		stages: []*stage{
			{tag: "raw", rows: []Row{{Key: "symbol", Value: "TEST.US"}}},
			nil, // corrupt entry: the styled renderer cannot survive it
		},
	}
	out := renderFlowSafe(f)
	if !strings.Contains(out, "[raw]") || !strings.Contains(out, "symbol: TEST.US") {
		t.Fatalf("fallback lost the intact stage: %q", out)
	}
	if strings.Contains(out, "╭") {
		t.Fatalf("fallback output should carry no border: %q", out)
	}
}

func TestRenderTagSafeFallsBackOnNilSession(t *testing.T) {
	if out := renderTagSafe(nil, time.Now()); out != "" {
		t.Fatalf("nil session should degrade to empty output, got %q", out)
	}
}

func TestPlainFlowCarriesSameContent(t *testing.T) {
	f := &flow{id: "dom1", epoch: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)}
	f.stages = []*stage{
		{tag: "raw", rows: []Row{{Key: "content", Value: "hello"}, {Value: "bare"}}, elapsed: 1500 * time.Millisecond},
	}
	out := plainFlow(f)
	for _, want := range []string{"[raw]", "[+1500ms]", "content: hello", "- bare"} {
		if !strings.Contains(out, want) {
			t.Fatalf("plain fallback missing %q: %q", want, out)
		}
	}
}
