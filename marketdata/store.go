package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/meenmo/ratemodel/curve"
	"github.com/meenmo/ratemodel/market"
	"github.com/meenmo/ratemodel/utils"
)

// Quote is one stored zero-curve node: a continuously compounded rate for a
// currency and tenor as of a quote date.
type Quote struct {
	Currency  market.Currency
	QuoteDate time.Time
	Months    int
	Rate      float64
}

// Store reads and writes curve quotes in Postgres. Table layout:
//
//	CREATE TABLE zero_quotes (
//	    currency   text    NOT NULL,
//	    quote_date date    NOT NULL,
//	    months     integer NOT NULL,
//	    rate       double precision NOT NULL,
//	    PRIMARY KEY (currency, quote_date, months)
//	);
type Store struct {
	db *sql.DB
}

// OpenStore connects to Postgres with a lib/pq DSN and verifies the
// connection.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenStore: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenStore: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Quotes loads all nodes for a currency as of a quote date, ordered by tenor.
func (s *Store) Quotes(ctx context.Context, ccy market.Currency, asOf time.Time) ([]Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT months, rate FROM zero_quotes WHERE currency = $1 AND quote_date = $2 ORDER BY months`,
		string(ccy), asOf)
	if err != nil {
		return nil, fmt.Errorf("Quotes: %s: %w", ccy, err)
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		q := Quote{Currency: ccy, QuoteDate: asOf}
		if err := rows.Scan(&q.Months, &q.Rate); err != nil {
			return nil, fmt.Errorf("Quotes: %s: %w", ccy, err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Quotes: %s: %w", ccy, err)
	}
	return out, nil
}

// SaveQuotes upserts a batch of nodes inside one transaction.
func (s *Store) SaveQuotes(ctx context.Context, quotes []Quote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SaveQuotes: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO zero_quotes (currency, quote_date, months, rate)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (currency, quote_date, months) DO UPDATE SET rate = EXCLUDED.rate`)
	if err != nil {
		return fmt.Errorf("SaveQuotes: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		if _, err := stmt.ExecContext(ctx, string(q.Currency), q.QuoteDate, q.Months, q.Rate); err != nil {
			return fmt.Errorf("SaveQuotes: %s %dm: %w", q.Currency, q.Months, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SaveQuotes: %w", err)
	}
	return nil
}

// Provider builds a multi-curve provider from the stored quotes of the given
// currencies as of the valuation date.
func (s *Store) Provider(ctx context.Context, valuation time.Time, currencies ...market.Currency) (*curve.MultiProvider, error) {
	discounts := make(map[market.Currency]*curve.Zero, len(currencies))
	for _, ccy := range currencies {
		quotes, err := s.Quotes(ctx, ccy, valuation)
		if err != nil {
			return nil, fmt.Errorf("Provider: %w", err)
		}
		if len(quotes) == 0 {
			return nil, fmt.Errorf("Provider: no quotes for %s as of %s", ccy, valuation.Format("2006-01-02"))
		}
		times := make([]float64, len(quotes))
		rates := make([]float64, len(quotes))
		for i, q := range quotes {
			times[i] = utils.YearFraction(valuation, utils.AddMonth(valuation, q.Months), "ACT/365F")
			rates[i] = q.Rate
		}
		zc, err := curve.NewZero(valuation, times, rates)
		if err != nil {
			return nil, fmt.Errorf("Provider: %s: %w", ccy, err)
		}
		discounts[ccy] = zc
	}
	p, err := curve.NewMultiProvider(valuation, discounts, nil)
	if err != nil {
		return nil, fmt.Errorf("Provider: %w", err)
	}
	return p, nil
}
