package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"chatterm/internal/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const chartHeight = 10

// RenderStock draws a stock summary panel: header, change line, candle
// chart, date range, stats, and last update time.
func (r *Renderer) RenderStock(d StockData) string {
	width := max(r.width()-4, 30) // inside the panel border and padding

	isPositive := orZero(d.Change) >= 0
	changeStyle, arrow, sign := downStyle, "▼", ""
	if isPositive {
		changeStyle, arrow, sign = upStyle, "▲", "+"
	}

	var lines []string
	lines = append(lines,
		titleStyle.Render(render.Sanitize(fmt.Sprintf("%s - %s",
			orDefault(d.Symbol, "N/A"), orDefault(d.CompanyName, "Unknown Company")))),
		mutedStyle.Render(render.Sanitize(fmt.Sprintf("%s • %s intervals",
			orDefault(d.Period, "N/A"), orDefault(d.Interval, "N/A")))),
		titleStyle.Render(FormatPrice(d.CurrentPrice))+"  "+
			changeStyle.Render(fmt.Sprintf("%s %s%s (%.2f%%)", arrow, sign, FormatPrice(d.Change), orZero(d.ChangePercent))),
		"",
	)

	lines = append(lines, candleChart(d, width)...)

	if d.DataRange != nil {
		start, end := render.Sanitize(d.DataRange.Start), render.Sanitize(d.DataRange.End)
		gap := max(width-runewidth.StringWidth(start)-runewidth.StringWidth(end), 1)
		lines = append(lines, mutedStyle.Render(start+strings.Repeat(" ", gap)+end))
	}

	lines = append(lines, "", statsRow(d, width))

	if d.LastUpdated != "" {
		lines = append(lines, "", mutedStyle.Render("Last updated: "+FormatUpdated(render.Sanitize(d.LastUpdated), time.Local)))
	}

	return panelStyle.Render(strings.Join(lines, "\n"))
}

// priceBounds returns the chart's top and bottom prices. Without chart
// data both are the current price.
func priceBounds(d StockData) (hi, lo float64) {
	if len(d.ChartData) == 0 {
		p := orZero(d.CurrentPrice)
		return p, p
	}
	hi, lo = math.Inf(-1), math.Inf(1)
	for _, pt := range d.ChartData {
		hi = math.Max(hi, pt.High)
		lo = math.Min(lo, pt.Low)
	}
	return hi, lo
}

func candleChart(d StockData, width int) []string {
	if len(d.ChartData) == 0 {
		return []string{
			mutedStyle.Render("No chart data available"),
			mutedStyle.Faint(true).Render("Chart data is currently unavailable for this stock"),
		}
	}

	hi, lo := priceBounds(d)
	priceRange := hi - lo
	if priceRange == 0 {
		priceRange = 1
	}

	top, bottom := FormatPrice(ptr(hi)), FormatPrice(ptr(lo))
	labelWidth := max(runewidth.StringWidth(top), runewidth.StringWidth(bottom))
	plotWidth := max(width-labelWidth-3, 1)

	candles := bucket(d.ChartData, plotWidth)
	step := 1
	if len(candles)*2 <= plotWidth {
		step = 2
	}

	row := func(p float64) int {
		return int(math.Round((hi - p) / priceRange * (chartHeight - 1)))
	}

	lines := make([]string, chartHeight)
	for y := 0; y < chartHeight; y++ {
		label := ""
		switch y {
		case 0:
			label = top
		case chartHeight - 1:
			label = bottom
		}

		var sb strings.Builder
		sb.WriteString(mutedStyle.Render(runewidth.FillLeft(label, labelWidth) + " ┤ "))
		for _, c := range candles {
			bodyTop, bodyBottom := row(math.Max(c.Open, c.Close)), row(math.Min(c.Open, c.Close))
			wickTop, wickBottom := row(c.High), row(c.Low)

			style := downStyle
			if c.Close >= c.Open {
				style = upStyle
			}

			cell := " "
			switch {
			case y >= bodyTop && y <= bodyBottom:
				cell = style.Render("█")
			case y >= wickTop && y <= wickBottom:
				cell = style.Render("│")
			}
			sb.WriteString(cell)
			if step == 2 {
				sb.WriteString(" ")
			}
		}
		lines[y] = strings.TrimRight(sb.String(), " ")
	}
	return lines
}

// bucket merges consecutive points so that at most n candles remain.
// A merged candle opens at the first point, closes at the last, and spans
// the extreme high and low.
func bucket(points []StockDataPoint, n int) []StockDataPoint {
	if len(points) <= n {
		return points
	}
	size := int(math.Ceil(float64(len(points)) / float64(n)))
	var out []StockDataPoint
	for i := 0; i < len(points); i += size {
		group := points[i:min(i+size, len(points))]
		c := group[0]
		for _, p := range group[1:] {
			c.High = math.Max(c.High, p.High)
			c.Low = math.Min(c.Low, p.Low)
			c.Volume += p.Volume
		}
		c.Close = group[len(group)-1].Close
		out = append(out, c)
	}
	return out
}

func statsRow(d StockData, width int) string {
	stats := [][2]string{
		{"Market Cap", FormatMarketCap(d.MarketCap)},
		{"P/E Ratio", orDefault(render.Sanitize(string(d.PERatio)), "N/A")},
		{"Dividend Yield", orDefault(render.Sanitize(string(d.DividendYield)), "N/A")},
		{"Data Points", strconv.Itoa(d.DataPoints)},
	}

	colWidth := 0
	for _, s := range stats {
		colWidth = max(colWidth, runewidth.StringWidth(s[0]), runewidth.StringWidth(s[1]))
	}
	colWidth += 2

	// Four columns when they fit, otherwise two rows of two.
	perRow := 4
	if colWidth*4 > width {
		perRow = 2
	}

	var rows []string
	for i := 0; i < len(stats); i += perRow {
		var cols []string
		for _, s := range stats[i:min(i+perRow, len(stats))] {
			cols = append(cols, lipgloss.JoinVertical(lipgloss.Left,
				mutedStyle.Render(runewidth.FillRight(s[0], colWidth)),
				runewidth.FillRight(s[1], colWidth),
			))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	return strings.Join(rows, "\n")
}
