// Package ingestion parses historical pool event exports into domain
// events ready for storage or replay.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// expected CSV header, in order.
var csvColumns = []string{
	"timestamp", "event", "price", "price_before", "amount0", "amount1",
	"tick", "liquidity", "owner", "tick_lower", "tick_upper",
}

// ReadEvents parses a CSV export into events for the given pool. Rows
// are assigned log indexes in file order, so files must already be
// sorted by time. Empty price cells become nil prices, which the
// backtest engine skips.
func ReadEvents(r io.Reader, pool string) ([]*domain.Event, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var events []*domain.Event
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row+1, err)
		}
		event, err := parseRow(record, pool, int64(row))
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row+1, err)
		}
		if err := event.Validate(); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", row+1, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func validateHeader(header []string) error {
	if len(header) != len(csvColumns) {
		return fmt.Errorf("csv header has %d columns, want %d", len(header), len(csvColumns))
	}
	for i, want := range csvColumns {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("csv column %d is %q, want %q", i, header[i], want)
		}
	}
	return nil
}

func parseRow(record []string, pool string, logIndex int64) (*domain.Event, error) {
	if len(record) != len(csvColumns) {
		return nil, fmt.Errorf("row has %d columns, want %d", len(record), len(csvColumns))
	}

	ts, err := parseTimestamp(record[0])
	if err != nil {
		return nil, err
	}
	price, err := parseOptionalFloat(record[2], "price")
	if err != nil {
		return nil, err
	}
	priceBefore, err := parseOptionalFloat(record[3], "price_before")
	if err != nil {
		return nil, err
	}
	amount0, err := parseFloat(record[4], "amount0")
	if err != nil {
		return nil, err
	}
	amount1, err := parseFloat(record[5], "amount1")
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		Pool:        pool,
		Timestamp:   ts,
		LogIndex:    logIndex,
		Type:        domain.EventType(strings.ToUpper(strings.TrimSpace(record[1]))),
		Price:       price,
		PriceBefore: priceBefore,
		Amount0:     amount0,
		Amount1:     amount1,
	}

	owner := strings.TrimSpace(record[8])
	switch event.Type {
	case domain.EventTypeSwap:
		tick, err := parseInt(record[6], "tick")
		if err != nil {
			return nil, err
		}
		poolLiquidity, err := parseFloat(record[7], "liquidity")
		if err != nil {
			return nil, err
		}
		event.Swap = &domain.SwapPayload{
			Owner:         owner,
			Tick:          tick,
			PoolLiquidity: poolLiquidity,
		}
	case domain.EventTypeMint, domain.EventTypeBurn:
		liquidity, err := parseFloat(record[7], "liquidity")
		if err != nil {
			return nil, err
		}
		tickLower, err := parseInt(record[9], "tick_lower")
		if err != nil {
			return nil, err
		}
		tickUpper, err := parseInt(record[10], "tick_upper")
		if err != nil {
			return nil, err
		}
		event.Liquidity = &domain.LiquidityPayload{
			Owner:     owner,
			TickLower: tickLower,
			TickUpper: tickUpper,
			Liquidity: liquidity,
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", record[1])
	}
	return event, nil
}

// parseTimestamp accepts RFC 3339 or unix seconds.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func parseFloat(s, column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", column, s, err)
	}
	return v, nil
}

func parseOptionalFloat(s, column string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := parseFloat(s, column)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt(s, column string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", column, s, err)
	}
	return v, nil
}
