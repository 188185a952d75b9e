package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"StockMon/pkg/util"
)

var ErrBadQuote = errors.New("bad quote payload")

type wireQuote struct {
	Code   string          `json:"code"`
	Symbol string          `json:"symbol"`
	Price  *float64        `json:"price"`
	Close  *float64        `json:"c"`
	TS     json.RawMessage `json:"ts"`
	T      int64           `json:"t"`
	Source string          `json:"source"`
}

// DecodeQuote parses a JSON quote. Both {"code","price","ts"} and the tick
// form {"symbol","c","t"} are accepted. ts may be RFC3339 or a unix
// timestamp; unix timestamps may be seconds or millis.
func DecodeQuote(b []byte) (*Quote, error) {
	var w wireQuote
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuote, err)
	}

	q := &Quote{Code: w.Code, Source: w.Source}
	if q.Code == "" {
		q.Code = w.Symbol
	}
	switch {
	case w.Price != nil:
		q.Price = *w.Price
	case w.Close != nil:
		q.Price = *w.Close
	default:
		return nil, fmt.Errorf("%w: missing price", ErrBadQuote)
	}
	if q.Code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrBadQuote)
	}

	if len(w.TS) > 0 && string(w.TS) != "null" {
		ts, ok := util.ParseTime(strings.Trim(string(w.TS), `"`))
		if !ok {
			return nil, fmt.Errorf("%w: bad ts %s", ErrBadQuote, w.TS)
		}
		q.Timestamp = ts
	} else {
		q.Timestamp = util.FromUnix(w.T)
	}
	return q, nil
}
