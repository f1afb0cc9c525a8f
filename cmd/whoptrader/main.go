package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Txink/WhopScraper-sub001/internal/config"
	"github.com/Txink/WhopScraper-sub001/internal/logview"
	"github.com/Txink/WhopScraper-sub001/internal/records"
)

// message is one simulated scraped alert, standing in for the scraper and
// parser that feed the real pipeline.
type message struct {
	domID    string
	content  string
	symbol   string
	side     string
	price    float64
	quantity int64 // fallback size when no recorded lot resolves
	refLabel string
	ratio    string
	lagMS    int
}

var demoMessages = []message{
	{
		domID:    "post_1CYWrYVBybnBUBuM4auH4j",
		content:  `"CAH - $227.5 CALLS EXPIRATION THIS WEEK $2.70"`,
		symbol:   "CAH",
		side:     "BUY",
		price:    2.75,
		quantity: 36,
		lagMS:    8153,
	},
	{
		domID:    "post_2ABCxyz123456789",
		content:  `"NVDA - $130 PUTS 3/7 $1.50"`,
		symbol:   "NVDA",
		side:     "BUY",
		price:    1.55,
		quantity: 64,
		lagMS:    3200,
	},
	{
		domID:    "post_3QrStUvWxYz0123456",
		content:  `"TSLL adding here $14.38, size it"`,
		symbol:   "TSLL",
		side:     "BUY",
		price:    14.38,
		quantity: 800,
		lagMS:    1240,
	},
	{
		domID:    "post_4DeFgHiJkLmNoPqRsT",
		content:  `"Selling half of today's TSLL"`,
		symbol:   "TSLL",
		side:     "SELL",
		price:    14.92,
		quantity: 400,
		refLabel: "today",
		ratio:    "1/2",
		lagMS:    980,
	},
}

// orderEvent crosses from a trade flow to the push listener.
type orderEvent struct {
	orderID string
	msg     message
}

func main() {
	n := flag.Int("n", 2, "number of simulated messages to trade")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Records.Path), 0o755); err != nil {
		log.Fatalf("mkdir records dir: %v", err)
	}
	db, err := records.Open(cfg.Records.Path)
	if err != nil {
		log.Fatalf("open records: %v", err)
	}
	defer db.Close()
	if err := records.RunMigrationsWithDB(db, "internal/records/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	store := records.NewStore(db)

	policy := logview.TagReplace
	if cfg.TagPolicyName() == "reject" {
		policy = logview.TagReject
	}
	lv := logview.New(logview.WithTagPolicy(policy), logview.WithFPS(cfg.UI.RefreshFPS))
	logview.SetDefault(lv)

	startup(lv, cfg)
	printPositions(ctx, lv, store, cfg, "Account positions")

	lv.Separator()

	count := *n
	if count > len(demoMessages) {
		count = len(demoMessages)
	}
	runPipeline(ctx, lv, store, cfg, demoMessages[:count])

	lv.Separator()
	printPositions(ctx, lv, store, cfg, "Account positions after fills")
}

// startup walks the boot steps under one live tag session.
func startup(lv *logview.Logger, cfg config.Config) {
	lv.StartTag("startup")
	for _, step := range []string{
		"broker session established",
		"message listener attached",
		"trade records store opened",
	} {
		time.Sleep(300 * time.Millisecond)
		lv.AppendTag("startup", step, 0)
	}
	lv.StopTag("startup")

	lv.LogConfig("config", cfg.Lines())
}

func printPositions(ctx context.Context, lv *logview.Logger, store *records.Store, cfg config.Config, title string) {
	holdings, err := store.Holdings(ctx)
	if err != nil {
		lv.Log("records", "loading holdings failed", err.Error())
		return
	}
	positions := make([]logview.Position, 0, len(holdings))
	var invested float64
	for _, h := range holdings {
		invested += float64(h.Quantity) * h.AvgCost
	}
	account := &logview.Account{
		AvailableCash: 32020.12,
		Cash:          35000.00,
		TotalAssets:   32020.12 + invested,
		Paper:         cfg.Account.Paper,
	}
	for _, h := range holdings {
		value := float64(h.Quantity) * h.AvgCost
		pct := 0.0
		if account.TotalAssets > 0 {
			pct = value / account.TotalAssets * 100
		}
		p := logview.Position{
			Symbol:      h.Symbol,
			Quantity:    h.Quantity,
			Unit:        "sh",
			AvgCost:     h.AvgCost,
			MarketValue: value,
			Pct:         pct,
		}
		for _, tr := range h.Trades {
			rec := logview.TradeRecord{
				SubmittedAt: tr.SubmittedAt,
				Side:        tr.Side,
				Quantity:    tr.Shares(),
			}
			if tr.Price != nil {
				rec.Price = fmt.Sprintf("%.2f", *tr.Price)
			}
			p.Records = append(p.Records, rec)
		}
		positions = append(positions, p)
	}
	lv.PrintPositions(title, positions, account, cfg.Lines())
}

// runPipeline trades each message on its own goroutine while a push
// listener applies asynchronous order updates, the way the live bot splits
// message handling from the broker's status stream.
func runPipeline(ctx context.Context, lv *logview.Logger, store *records.Store, cfg config.Config, msgs []message) {
	events := make(chan orderEvent, len(msgs))

	var listener sync.WaitGroup
	listener.Add(1)
	go func() {
		defer listener.Done()
		pushListener(ctx, lv, store, events)
	}()

	var flows sync.WaitGroup
	for i, m := range msgs {
		flows.Add(1)
		go func(i int, m message) {
			defer flows.Done()
			time.Sleep(time.Duration(i) * 400 * time.Millisecond)
			tradeFlow(ctx, lv, store, cfg, m, events)
		}(i, m)
	}
	flows.Wait()
	close(events)
	listener.Wait()
}

// sellShares sizes a relative sell ("half of today's buys") against the
// recorded fills, falling back to the signal's own size when no lot
// matches. resolved reports which of the two happened.
func sellShares(ctx context.Context, store *records.Store, m message) (qty int64, resolved bool) {
	if m.side != "SELL" || m.refLabel == "" {
		return m.quantity, false
	}
	got, err := store.ResolveSellQuantity(ctx, records.SellQuery{
		Symbol:   m.symbol,
		RefLabel: m.refLabel,
		Ratio:    m.ratio,
	})
	if err != nil || got <= 0 {
		return m.quantity, false
	}
	return got, true
}

// tradeFlow walks one message through the staged pipeline and hands the
// submitted order to the push listener.
func tradeFlow(ctx context.Context, lv *logview.Logger, store *records.Store, cfg config.Config, m message, events chan<- orderEvent) {
	symbol := records.NormalizeSymbol(m.symbol)
	id := lv.StartFlow(m.domID)

	lv.AddStage("raw message", []logview.Row{
		{Key: "domID", Value: m.domID},
		{Key: "content", Value: m.content, Style: logview.StyleHighlight},
		{Key: "position", Value: "single", Style: logview.StyleMuted},
	}, logview.ForFlow(id), logview.Styled(logview.StyleInfo),
		logview.WithSuffix(fmt.Sprintf("[-%dms]", m.lagMS)))
	time.Sleep(350 * time.Millisecond)

	lv.AddStage("parsed", []logview.Row{
		{Value: fmt.Sprintf("[%s] %s $%.2f", m.side, symbol, m.price), Style: logview.StyleSuccess},
	}, logview.ForFlow(id), logview.Styled(logview.StyleInfo))
	time.Sleep(300 * time.Millisecond)

	if m.side == "SELL" && m.refLabel != "" {
		qty, resolved := sellShares(ctx, store, m)
		note := logview.Row{Value: "no recorded lot, using signal size", Style: logview.StyleMuted}
		if resolved {
			note = logview.Row{Value: fmt.Sprintf("%d shares from recorded %s buys", qty, m.refLabel), Style: logview.StyleSuccess}
		}
		ratio := m.ratio
		if ratio == "" {
			ratio = "all"
		}
		lv.AddStage("resolve quantity", []logview.Row{
			{Key: "reference", Value: fmt.Sprintf("%s buys, %s", m.refLabel, ratio), Style: logview.StyleMuted},
			note,
		}, logview.ForFlow(id), logview.Styled(logview.StyleInfo))
		m.quantity = qty
		time.Sleep(200 * time.Millisecond)
	}

	total := m.price * float64(m.quantity)
	lv.AddStage("validation", []logview.Row{
		{Key: "quote", Value: fmt.Sprintf("market=$%.2f signal=$%.2f", m.price, m.price), Style: logview.StyleMuted},
		{Key: "order value", Value: fmt.Sprintf("$%.2f x %d = $%.2f", m.price, m.quantity, total)},
	}, logview.ForFlow(id), logview.Styled(logview.StyleWarning))
	time.Sleep(300 * time.Millisecond)

	if total > cfg.Account.MaxOrderValue && cfg.Account.MaxOrderValue > 0 && !cfg.Account.Paper {
		lv.AddStage("rejected", []logview.Row{
			{Value: fmt.Sprintf("order value $%.2f exceeds cap $%.2f", total, cfg.Account.MaxOrderValue), Style: logview.StyleError},
		}, logview.ForFlow(id), logview.Styled(logview.StyleError))
		lv.EndFlow(id)
		return
	}

	orderID := fmt.Sprintf("ORD_%s_%s", m.symbol, m.domID[len(m.domID)-4:])
	suffix := ""
	if cfg.Account.Paper {
		suffix = "[paper]"
	}
	lv.AddStage("submit order", []logview.Row{
		{Key: "OrderID", Value: orderID, Style: logview.StyleMuted},
		{Value: fmt.Sprintf("[%s] %s $%.2f x %d = $%.2f", m.side, symbol, m.price, m.quantity, total), Style: logview.StyleSuccess},
	}, logview.ForFlow(id), logview.Styled(logview.StyleSuccess), logview.WithSuffix(suffix))

	lv.RegisterOrder(orderID, id)
	lv.EndFlow(id)

	events <- orderEvent{orderID: orderID, msg: m}
}

// pushListener plays the broker's order-status stream: a New push, then a
// terminal Filled push that also lands in the records store.
func pushListener(ctx context.Context, lv *logview.Logger, store *records.Store, events <-chan orderEvent) {
	for ev := range events {
		time.Sleep(250 * time.Millisecond)
		lv.PushOrder(ev.orderID, []logview.Row{
			{Key: "Status", Value: "OrderStatus.New"},
		}, logview.StyleInfo, false)

		time.Sleep(400 * time.Millisecond)
		lv.PushOrder(ev.orderID, []logview.Row{
			{Key: "Status", Value: "OrderStatus.Filled", Style: logview.StyleSuccess},
		}, logview.StyleSuccess, true)

		price := ev.msg.price
		if err := store.Append(ctx, records.Trade{
			OrderID:          ev.orderID,
			Symbol:           ev.msg.symbol,
			Side:             ev.msg.side,
			Quantity:         ev.msg.quantity,
			ExecutedQuantity: ev.msg.quantity,
			Price:            &price,
			Status:           "FILLED_ALL",
			SubmittedAt:      records.Now(),
		}); err != nil {
			lv.Log("records", "recording fill failed", err.Error())
		}
	}
}
