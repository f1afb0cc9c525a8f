package logview

import (
	"strings"
	"testing"
	"time"
)

func TestMoneyGroupsThousands(t *testing.T) {
	if got := money(32020.124); got != "$32,020.12" {
		t.Fatalf("money = %q", got)
	}
	if got := money3(1.2345); got != "$1.234" {
		t.Fatalf("money3 = %q", got)
	}
	if got := money(999.9); got != "$999.90" {
		t.Fatalf("no grouping below 1000: %q", got)
	}
}

func TestPrintPositionsFullLayout(t *testing.T) {
	l, buf := newBufferLogger()
	positions := []Position{
		{
			Symbol:      "TEST.US",
			Quantity:    4802,
			Unit:        "sh",
			AvgCost:     1.041,
			MarketValue: 5002.08,
			Pct:         15.6,
			StopLoss:    13.5,
			Records: []TradeRecord{
				{SubmittedAt: time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC), Side: "buy", Quantity: 4802, Price: "1.041"},
			},
		},
		{Symbol: "DEMO.US", Quantity: 10, Unit: "sh", AvgCost: 250.5, MarketValue: 2505, Pct: 7.8},
	}
	account := &Account{AvailableCash: 12000.5, Cash: 8000, TotalAssets: 32020.12, Paper: true}

	l.PrintPositions("Morning snapshot", positions, account, []string{"records: trades.db"})

	out := plain(buf.String())
	for _, want := range []string{
		"Morning snapshot",
		"Configuration",
		"records: trades.db",
		"Account",
		"[paper]",
		"Total assets",
		"$32,020.12",
		"$12,000.50",
		"Positions",
		"TEST.US",
		"4802sh",
		"$1.041",
		"$5,002.08",
		"15.6% stop=$13.5",
		"DEMO.US",
		"7.8%",
		"[BUY ] 4802 @1.041",
		"08-28",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "╭") || !strings.Contains(out, "╰") {
		t.Fatalf("positions panel should be bordered:\n%s", out)
	}
}

func TestPrintPositionsLiveModeAndNoStop(t *testing.T) {
	l, buf := newBufferLogger()
	account := &Account{TotalAssets: 100, AvailableCash: 100, Cash: 100}
	l.PrintPositions("", []Position{{Symbol: "X.US", Quantity: 1, Unit: "sh", Pct: 1.0}}, account, nil)

	out := plain(buf.String())
	if !strings.Contains(out, "[live]") {
		t.Fatalf("non-paper account should be tagged live:\n%s", out)
	}
	if strings.Contains(out, "stop=") {
		t.Fatalf("zero stop loss must not render a stop marker:\n%s", out)
	}
	if strings.Contains(out, "Configuration") {
		t.Fatalf("empty config lines should skip the block:\n%s", out)
	}
}

func TestPrintPositionsEmpty(t *testing.T) {
	l, buf := newBufferLogger()
	l.PrintPositions("", nil, nil, nil)

	out := plain(buf.String())
	if !strings.Contains(out, "no open positions") {
		t.Fatalf("empty holdings placeholder missing:\n%s", out)
	}
	if strings.Contains(out, "Account") {
		t.Fatalf("nil account should skip the account block:\n%s", out)
	}
}

func TestPrintPositionsAboveLiveSurface(t *testing.T) {
	l, rs := newRecordLogger()
	l.StartFlow("f1")
	l.PrintPositions("", []Position{{Symbol: "TEST.US", Quantity: 1, Unit: "sh"}}, nil, nil)

	if len(rs.printed) != 1 {
		t.Fatalf("expected one println while surface is live, got %d", len(rs.printed))
	}
	if !strings.Contains(plain(rs.printed[0]), "TEST.US") {
		t.Fatalf("printed panel missing symbol: %q", rs.printed[0])
	}
}
