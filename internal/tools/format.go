package tools

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatPrice renders a dollar amount with two decimals. Missing or NaN
// values render as "N/A".
func FormatPrice(p *float64) string {
	if p == nil || math.IsNaN(*p) {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *p)
}

// FormatMarketCap abbreviates trillions, billions and millions; smaller
// values are printed in full with thousands separators.
func FormatMarketCap(c *float64) string {
	if c == nil || math.IsNaN(*c) {
		return "N/A"
	}
	v := *c
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	}
	return "$" + humanize.CommafWithDigits(v, 3)
}

const updatedLayout = "Jan 02, 2006 at 3:04 PM"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatUpdated renders a timestamp as "Jan 02, 2006 at 3:04 PM" in loc.
// Unparseable input is returned unchanged.
func FormatUpdated(ts string, loc *time.Location) string {
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, ts)
		} else {
			// Zone-less timestamps are local, as browsers read them.
			t, err = time.ParseInLocation(layout, ts, loc)
		}
		if err == nil {
			return t.In(loc).Format(updatedLayout)
		}
	}
	return ts
}

func ptr(f float64) *float64 { return &f }

func orZero(p *float64) float64 {
	if p == nil || math.IsNaN(*p) {
		return 0
	}
	return *p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
