// Package tools renders the results of the assistant's tool calls: web
// search cards and stock charts, drawn for the terminal.
package tools

import (
	"encoding/json"
	"strconv"
)

type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type StockDataPoint struct {
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type DataRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type StockData struct {
	Symbol        string           `json:"symbol"`
	CompanyName   string           `json:"company_name"`
	Period        string           `json:"period"`
	Interval      string           `json:"interval"`
	CurrentPrice  *float64         `json:"current_price"`
	Change        *float64         `json:"change"`
	ChangePercent *float64         `json:"change_percent"`
	MarketCap     *float64         `json:"market_cap"`
	PERatio       FlexString       `json:"pe_ratio"`
	DividendYield FlexString       `json:"dividend_yield"`
	MA20          *float64         `json:"ma_20"`
	MA50          *float64         `json:"ma_50"`
	DataPoints    int              `json:"data_points"`
	ChartData     []StockDataPoint `json:"chart_data"`
	ChartType     string           `json:"chart_type"`
	LastUpdated   string           `json:"last_updated"`
	DataRange     *DataRange       `json:"data_range"`
}

// FlexString accepts a JSON string or number. Stock tools are not
// consistent about how they encode ratios.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}
