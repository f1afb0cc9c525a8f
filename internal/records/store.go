package records

import (
	"context"
	"database/sql"
	"time"
)

// Trade represents one recorded order fill.
type Trade struct {
	ID               int64
	OrderID          string
	Symbol           string
	Side             string // BUY or SELL
	Quantity         int64
	ExecutedQuantity int64
	Price            *float64
	Status           string
	SubmittedAt      time.Time
	CreatedAt        time.Time
}

// Filled reports whether the trade reached a filled status. Broker push
// payloads spell it FILLED_ALL, Filled, PartialFilled and similar, so the
// check is a case-insensitive substring.
func (t Trade) Filled() bool {
	return containsFold(t.Status, "filled")
}

// Shares returns the executed quantity, falling back to the submitted
// quantity when the broker omitted the executed figure.
func (t Trade) Shares() int64 {
	if t.ExecutedQuantity > 0 {
		return t.ExecutedQuantity
	}
	return t.Quantity
}

// Holding is the aggregate position in one symbol, derived from its fills.
type Holding struct {
	Symbol   string
	Quantity int64
	AvgCost  float64
	Trades   []Trade // newest first
}

// Store reads and writes the trades table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Append records a fill. A repeated order id overwrites the earlier row so
// that status pushes arriving out of order cannot duplicate a trade.
func (s *Store) Append(ctx context.Context, t Trade) error {
	t.Symbol = NormalizeSymbol(t.Symbol)
	return WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM trades WHERE order_id = ?`, t.OrderID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO trades(
		 order_id, symbol, side, quantity, executed_quantity, price, status, submitted_at, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
		`,
			t.OrderID, t.Symbol, t.Side, t.Quantity, t.ExecutedQuantity,
			nullFloat(t.Price), t.Status, t.SubmittedAt.UTC())
		return err
	})
}

// BySymbol returns the symbol's trades, newest submission first.
func (s *Store) BySymbol(ctx context.Context, symbol string) ([]Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, order_id, symbol, side, quantity, executed_quantity, price, status, submitted_at, created_at
	FROM trades WHERE symbol = ? ORDER BY submitted_at DESC, id DESC`,
		NormalizeSymbol(symbol))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

// Symbols lists every symbol with at least one recorded trade.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT symbol FROM trades ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// Holdings aggregates filled trades into net positions. Buy fills add
// shares at their price, sell fills remove them; symbols whose net
// quantity reached zero are dropped. AvgCost is the weighted average of
// the buy fills.
func (s *Store) Holdings(ctx context.Context) ([]Holding, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, order_id, symbol, side, quantity, executed_quantity, price, status, submitted_at, created_at
	FROM trades ORDER BY symbol, submitted_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	trades, err := scanTrades(rows)
	if err != nil {
		return nil, err
	}

	var out []Holding
	var cur *Holding
	var buyQty int64
	var buyCost float64
	flush := func() {
		if cur == nil {
			return
		}
		if cur.Quantity > 0 {
			if buyQty > 0 {
				cur.AvgCost = buyCost / float64(buyQty)
			}
			out = append(out, *cur)
		}
		cur, buyQty, buyCost = nil, 0, 0
	}
	for _, t := range trades {
		if !t.Filled() {
			continue
		}
		if cur == nil || cur.Symbol != t.Symbol {
			flush()
			cur = &Holding{Symbol: t.Symbol}
		}
		cur.Trades = append(cur.Trades, t)
		switch t.Side {
		case "BUY":
			cur.Quantity += t.Shares()
			if t.Price != nil {
				buyQty += t.Shares()
				buyCost += float64(t.Shares()) * *t.Price
			}
		case "SELL":
			cur.Quantity -= t.Shares()
		}
	}
	flush()
	return out, nil
}

func scanTrades(rows *sql.Rows) ([]Trade, error) {
	var out []Trade
	for rows.Next() {
		var t Trade
		var price sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Symbol, &t.Side, &t.Quantity,
			&t.ExecutedQuantity, &price, &t.Status, &t.SubmittedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		if price.Valid {
			p := price.Float64
			t.Price = &p
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
