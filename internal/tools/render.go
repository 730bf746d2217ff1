package tools

import (
	"encoding/json"
	"log/slog"

	"chatterm/internal/render"
	"chatterm/internal/service"
)

const (
	ToolSearchWeb    = "search_web"
	ToolGetStockData = "get_stock_data"
)

// Renderer draws tool invocations for the terminal.
type Renderer struct {
	// Width is the available column count. Zero means 80.
	Width int
}

func NewRenderer(width int) *Renderer {
	return &Renderer{Width: width}
}

func (r *Renderer) width() int {
	if r.Width <= 0 {
		return 80
	}
	return r.Width
}

// Render returns the display for inv, or "" when there is nothing to show
// yet (a call still waiting for its result).
func (r *Renderer) Render(inv service.ToolInvocation) string {
	switch inv.ToolName {
	case ToolSearchWeb:
		if inv.State == service.ToolStreaming {
			return placeholderStyle.Render("🔍 Searching the web...")
		}
		if inv.Error != "" {
			return toolError(inv)
		}
		if inv.Result == "" {
			return ""
		}
		return r.renderSearchResult(inv.Result)

	case ToolGetStockData:
		if inv.State == service.ToolStreaming {
			return placeholderStyle.Render("📈 Fetching stock data...")
		}
		if inv.Error != "" {
			return toolError(inv)
		}
		if inv.Result == "" {
			return ""
		}
		var data StockData
		if err := json.Unmarshal([]byte(inv.Result), &data); err != nil {
			slog.Error("failed to parse stock data", "tool_call_id", inv.ToolCallID, "error", err)
			return downStyle.Render("▼ Error parsing stock data")
		}
		return r.RenderStock(data)
	}

	out, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return mutedStyle.Render(render.Sanitize(inv.ToolName))
	}
	return mutedStyle.Render(string(out))
}

func (r *Renderer) renderSearchResult(result string) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(result), &envelope); err != nil {
		slog.Warn("search result is not valid JSON, treating as text", "result", truncate(result, 200))
		return searchText(result)
	}
	raw, ok := envelope["results"]
	if !ok || len(raw) == 0 || raw[0] != '[' {
		return searchText(result)
	}
	var results []SearchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		slog.Warn("search results have an unexpected shape", "error", err)
		return searchText(result)
	}
	return r.RenderSearch(results)
}

func toolError(inv service.ToolInvocation) string {
	return downStyle.Render("✗ " + render.Sanitize(inv.ToolName) + " failed: " + render.Sanitize(inv.Error))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
