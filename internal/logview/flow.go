package logview

import (
	"fmt"
	"time"
)

// pushTag is the fixed stage label used by PushOrder. Repeated pushes for
// the same order overwrite the previous push stage in place rather than
// piling up duplicate rows.
const pushTag = "order push"

// Row is a single field within a stage. A non-empty Key joins the
// surrounding keyed rows in an aligned two-column block; an empty Key
// renders as a standalone line and breaks any open block.
type Row struct {
	Key   string
	Value string
	Style Style
}

type stage struct {
	tag     string
	rows    []Row
	suffix  string
	style   Style
	elapsed time.Duration
}

type flow struct {
	id      string
	epoch   time.Time
	stages  []*stage
	orderID string
}

// ---------------------------------------------------------------------------
// Stage options
// ---------------------------------------------------------------------------

type stageOpts struct {
	flowID string
	suffix string
	style  Style
}

// StageOption customises AddStage.
type StageOption func(*stageOpts)

// ForFlow targets an explicit flow instead of the current one.
func ForFlow(id string) StageOption {
	return func(o *stageOpts) { o.flowID = id }
}

// WithSuffix annotates the stage header, e.g. "[paper]".
func WithSuffix(s string) StageOption {
	return func(o *stageOpts) { o.suffix = s }
}

// Styled sets the stage's semantic style.
func Styled(s Style) StageOption {
	return func(o *stageOpts) { o.style = s }
}

// ---------------------------------------------------------------------------
// Flow registry
// ---------------------------------------------------------------------------

// StartFlow creates a flow and makes it current. An empty id generates a
// unique one. Starting an id that is already active replaces the prior
// flow's state and order mapping.
func (l *Logger) StartFlow(id string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id == "" {
		l.seq++
		id = fmt.Sprintf("flow_%s_%d", l.inst, l.seq)
	}
	if old, ok := l.flows[id]; ok {
		if old.orderID != "" {
			delete(l.orders, old.orderID)
		}
		l.dropFromOrderLocked(old)
	}

	f := &flow{id: id, epoch: l.now()}
	l.flows[id] = f
	l.flowOrder = append(l.flowOrder, f)
	l.ensureSurfaceLocked()
	l.refreshLocked()
	return id
}

// AddStage appends a stage to the target flow (explicit via ForFlow, the
// current flow otherwise). Without a matching active flow it degrades to a
// single static entry so the output is never lost.
func (l *Logger) AddStage(tag string, rows []Row, opts ...StageOption) {
	var o stageOpts
	for _, opt := range opts {
		opt(&o)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f := l.resolveLocked(o.flowID)
	if f == nil {
		l.stageFallbackLocked(tag, rows, o)
		return
	}
	f.stages = append(f.stages, &stage{
		tag:     tag,
		rows:    rows,
		suffix:  o.suffix,
		style:   o.style,
		elapsed: l.now().Sub(f.epoch),
	})
	l.refreshLocked()
}

// EndFlow retires the target flow. While an order id is registered the
// flow stays live and visually rendered, awaiting a terminal push.
func (l *Logger) EndFlow(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f := l.resolveLocked(id)
	if f == nil {
		return
	}
	if f.orderID != "" {
		l.refreshLocked()
		return
	}
	l.finishLocked(f)
}

// RegisterOrder maps an order id onto the target flow so an asynchronous
// push listener can reach it without knowing the flow id.
func (l *Logger) RegisterOrder(orderID, flowID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f := l.resolveLocked(flowID)
	if f == nil || orderID == "" {
		return
	}
	f.orderID = orderID
	l.orders[orderID] = f
}

// PushOrder applies an asynchronous order-status update to the flow mapped
// to orderID. An unknown id, or no live surface, makes this a no-op. The
// update overwrites the most recent push stage in place when one exists.
// A terminal push retires the flow and its mapping.
func (l *Logger) PushOrder(orderID string, rows []Row, style Style, terminal bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f := l.orders[orderID]
	if f == nil || l.surf == nil {
		return
	}

	st := &stage{
		tag:     pushTag,
		rows:    rows,
		style:   style,
		elapsed: l.now().Sub(f.epoch),
	}
	replaced := false
	for i := len(f.stages) - 1; i >= 0; i-- {
		if f.stages[i].tag == pushTag {
			f.stages[i] = st
			replaced = true
			break
		}
	}
	if !replaced {
		f.stages = append(f.stages, st)
	}
	l.refreshLocked()

	if terminal {
		delete(l.orders, orderID)
		f.orderID = ""
		l.finishLocked(f)
	}
}

// ActiveFlows reports how many flows are currently live.
func (l *Logger) ActiveFlows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.flows)
}

// PendingOrders reports how many order ids await a terminal push.
func (l *Logger) PendingOrders() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}

// ---------------------------------------------------------------------------
// Internals (callers hold l.mu)
// ---------------------------------------------------------------------------

// resolveLocked returns the flow for id, or the most-recently-started
// active flow when id is empty. The "current" flow is derived from
// creation order rather than stored, so it cannot go stale when flows end
// out of order.
func (l *Logger) resolveLocked(id string) *flow {
	if id != "" {
		return l.flows[id]
	}
	if n := len(l.flowOrder); n > 0 {
		return l.flowOrder[n-1]
	}
	return nil
}

func (l *Logger) dropFromOrderLocked(f *flow) {
	for i, g := range l.flowOrder {
		if g == f {
			l.flowOrder = append(l.flowOrder[:i], l.flowOrder[i+1:]...)
			return
		}
	}
}

// finishLocked removes f from the registry. The last flow out retires the
// surface with a final frame that still shows f's panel; otherwise the
// finished panel scrolls into history above the live region.
func (l *Logger) finishLocked(f *flow) {
	final := l.renderCompositeLocked()
	panel := renderFlowSafe(f)

	delete(l.flows, f.id)
	l.dropFromOrderLocked(f)
	if f.orderID != "" {
		delete(l.orders, f.orderID)
	}

	if len(l.flows) == 0 && l.liveTag == "" {
		l.retireSurfaceLocked(final)
		return
	}
	if l.surf != nil {
		l.surf.println(panel)
	}
	l.refreshLocked()
}

// stageFallbackLocked renders one static entry for a stage that found no
// flow context.
func (l *Logger) stageFallbackLocked(tag string, rows []Row, o stageOpts) {
	details := make([]Detail, 0, len(rows))
	for _, r := range rows {
		details = append(details, Detail{Key: r.Key, Text: r.Value, Style: r.Style})
	}
	l.emitLocked(renderStaticSafe(Entry{
		Tag:      tag,
		Header:   o.suffix,
		Details:  details,
		TagStyle: o.style,
	}, l.now()))
}
