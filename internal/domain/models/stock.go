package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Stock describes a tradable code and its company name.
type Stock struct {
	Code  string  `yaml:"code" json:"code" validate:"required"`
	Name  string  `yaml:"name" json:"name"`
	Price float64 `yaml:"price" json:"price" validate:"gte=0"`
}

// Quote is a raw price tick as produced by a feed.
type Quote struct {
	Code      string    `json:"code"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"ts"`
	Source    string    `json:"source,omitempty"`
}

// StockPrice is the processed price of one code. Change is the percent move
// against the first price seen for the code.
type StockPrice struct {
	Code      string    `json:"code"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	Timestamp time.Time `json:"ts"`
}

// PriceMap is a price snapshot keyed by code.
type PriceMap map[string]StockPrice

// Clone returns an independent copy.
func (m PriceMap) Clone() PriceMap {
	out := make(PriceMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Codes returns the codes in ascending order.
func (m PriceMap) Codes() []string {
	codes := make([]string, 0, len(m))
	for k := range m {
		codes = append(codes, k)
	}
	sort.Strings(codes)
	return codes
}

// AlertRequest is the console's request to set bounds on a code.
type AlertRequest struct {
	Code  string
	Lower float64
	Upper float64
}

// AlertSetting holds the bounds for one code. A nil or zero bound is unset.
type AlertSetting struct {
	Code  string   `json:"code"`
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

// NewAlertSetting builds a setting from request bounds. Both bounds are kept
// as given, so a setting built here is never Empty.
func NewAlertSetting(code string, lower, upper float64) AlertSetting {
	return AlertSetting{Code: code, Lower: &lower, Upper: &upper}
}

// Empty reports whether neither bound is set. An empty setting announces a
// removal.
func (s AlertSetting) Empty() bool { return s.Lower == nil && s.Upper == nil }

// AlertKind is the side of the band that was crossed.
type AlertKind string

const (
	AlertBelow AlertKind = "below"
	AlertAbove AlertKind = "above"
)

// AlertEvent is a triggered alert.
type AlertEvent struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Kind      AlertKind `json:"kind"`
	Price     float64   `json:"price"`
	Bound     float64   `json:"bound"`
	Timestamp time.Time `json:"ts"`
}

func (e AlertEvent) String() string {
	return fmt.Sprintf("%s price ($%.2f) %s $%.2f", e.Code, e.Price, e.Kind, e.Bound)
}

// Evaluate returns the alerts p triggers against s. Bounds are inclusive and
// a zero bound never fires.
func (s AlertSetting) Evaluate(p StockPrice) []AlertEvent {
	var out []AlertEvent
	if lower, ok := s.LowerBound(); ok && p.Price <= lower {
		out = append(out, newAlert(p, AlertBelow, lower))
	}
	if upper, ok := s.UpperBound(); ok && p.Price >= upper {
		out = append(out, newAlert(p, AlertAbove, upper))
	}
	return out
}

// LowerBound returns the lower bound and whether it is set.
func (s AlertSetting) LowerBound() (float64, bool) { return active(s.Lower) }

// UpperBound returns the upper bound and whether it is set.
func (s AlertSetting) UpperBound() (float64, bool) { return active(s.Upper) }

func active(f *float64) (float64, bool) {
	if f == nil || *f == 0 {
		return 0, false
	}
	return *f, true
}

func newAlert(p StockPrice, kind AlertKind, bound float64) AlertEvent {
	return AlertEvent{
		ID:        uuid.New(),
		Code:      p.Code,
		Kind:      kind,
		Price:     p.Price,
		Bound:     bound,
		Timestamp: p.Timestamp,
	}
}
