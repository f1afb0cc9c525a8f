package logview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TradeRecord is one historical fill shown under a position row.
type TradeRecord struct {
	SubmittedAt time.Time
	Side        string
	Quantity    int64
	Price       string
}

// Position is one holding in the account summary.
type Position struct {
	Symbol      string
	Quantity    int64
	Unit        string
	AvgCost     float64
	MarketValue float64
	Pct         float64
	StopLoss    float64 // zero means no stop set
	Records     []TradeRecord
}

// Account is the optional cash summary block.
type Account struct {
	AvailableCash float64
	Cash          float64
	TotalAssets   float64
	Paper         bool
}

var moneyPrinter = message.NewPrinter(language.English)

func money(v float64) string  { return moneyPrinter.Sprintf("$%.2f", v) }
func money3(v float64) string { return moneyPrinter.Sprintf("$%.3f", v) }

// PrintPositions composes the account/position summary as one nested
// bordered table and prints it exactly once. It does not participate in
// the live-surface multiplexing: while flows are live it scrolls into
// history above them.
func (l *Logger) PrintPositions(title string, positions []Position, account *Account, configLines []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	text := renderPositionsSafe(title, positions, account, configLines)
	l.emitLocked(text)
}

func renderPositionsSafe(title string, positions []Position, account *Account, configLines []string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = plainPositions(title, positions, account)
		}
	}()
	return renderPositions(title, positions, account, configLines)
}

func renderPositions(title string, positions []Position, account *Account, configLines []string) string {
	var blocks [][]string // each block is header line + body lines, pre-styled

	if len(configLines) > 0 {
		body := make([]string, 0, len(configLines))
		for _, line := range configLines {
			if k, v, ok := splitKV(line); ok {
				body = append(body, keyStyle.Render(k)+": "+valueStyle.Render(v))
			} else if strings.HasPrefix(strings.TrimSpace(line), "!") {
				body = append(body, errorStyle.Render(line))
			} else {
				body = append(body, mutedStyle.Render(line))
			}
		}
		blocks = append(blocks, append([]string{infoStyle.Render("Configuration")}, body...))
	}

	if account != nil {
		mode := successStyle.Render("[live]")
		if account.Paper {
			mode = mutedStyle.Render("[paper]")
		}
		header := infoStyle.Render("Account") + " " + mode
		pairs := [][2]string{
			{"Total assets", money(account.TotalAssets)},
			{"Available cash", money(account.AvailableCash)},
			{"Cash", money(account.Cash)},
		}
		body := make([]string, 0, len(pairs))
		for _, p := range pairs {
			body = append(body, keyStyle.Render(p[0])+"  "+p[1])
		}
		blocks = append(blocks, append([]string{header}, body...))
	}

	blocks = append(blocks, append([]string{infoStyle.Render("Positions")}, positionTable(positions)...))

	inner := 0
	for _, b := range blocks {
		for _, line := range b {
			if w := lipgloss.Width(line); w > inner {
				inner = w
			}
		}
	}

	center := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center)
	div := dividerStyle.Render(strings.Repeat("─", inner))
	var lines []string
	for i, b := range blocks {
		if i > 0 {
			lines = append(lines, div)
		}
		lines = append(lines, center.Render(b[0]))
		lines = append(lines, b[1:]...)
	}

	panel := panelStyle.Render(strings.Join(lines, "\n"))
	if title != "" {
		return plainStyle.Render(title) + "\n" + panel
	}
	return panel
}

// positionTable lays the holdings out in five aligned columns with the
// fill history indented beneath each symbol.
func positionTable(positions []Position) []string {
	headers := []string{"Symbol", "Qty", "Avg Cost", "Value", "Pct"}
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		pct := fmt.Sprintf("%.1f%%", p.Pct)
		if p.StopLoss > 0 {
			pct += fmt.Sprintf(" stop=$%g", p.StopLoss)
		}
		rows = append(rows, []string{
			p.Symbol,
			fmt.Sprintf("%d%s", p.Quantity, p.Unit),
			money3(p.AvgCost),
			money(p.MarketValue),
			pct,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	pad := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			fill := strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
			if i == 0 {
				parts[i] = style.Render(cell) + fill
			} else {
				parts[i] = fill + style.Render(cell)
			}
		}
		return strings.Join(parts, "  ")
	}

	out := []string{pad(headers, stageHeaderStyle)}
	for i, p := range positions {
		out = append(out, pad(rows[i], lipgloss.NewStyle()))
		for _, rec := range p.Records {
			side := strings.ToUpper(rec.Side)
			sideStyle := warnStyle
			if side == "BUY" {
				sideStyle = successStyle
			}
			out = append(out, mutedStyle.Render("  "+rec.SubmittedAt.Format("01-02"))+
				" "+sideStyle.Render("["+runewidth.FillRight(side, 4)+"]")+
				mutedStyle.Render(fmt.Sprintf(" %d @%s", rec.Quantity, rec.Price)))
		}
	}
	if len(positions) == 0 {
		out = append(out, mutedStyle.Render("no open positions"))
	}
	return out
}

func plainPositions(title string, positions []Position, account *Account) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	if account != nil {
		fmt.Fprintf(&b, "total=%s available=%s cash=%s paper=%v\n",
			money(account.TotalAssets), money(account.AvailableCash), money(account.Cash), account.Paper)
	}
	for _, p := range positions {
		fmt.Fprintf(&b, "%s %d%s avg=%s value=%s %.1f%%\n",
			p.Symbol, p.Quantity, p.Unit, money3(p.AvgCost), money(p.MarketValue), p.Pct)
	}
	return strings.TrimRight(b.String(), "\n")
}
