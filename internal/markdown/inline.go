package markdown

import "regexp"

// SpanKind identifies an inline span.
type SpanKind int

const (
	SpanPlain SpanKind = iota
	SpanBold
	SpanItalic
	SpanCode
	SpanLink
)

var spanNames = [...]string{
	SpanPlain:  "plain",
	SpanBold:   "bold",
	SpanItalic: "italic",
	SpanCode:   "code",
	SpanLink:   "link",
}

func (k SpanKind) String() string {
	if k < 0 || int(k) >= len(spanNames) {
		return "unknown"
	}
	return spanNames[k]
}

func (k SpanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Span is a run of inline text. Href is set only for SpanLink and is the
// target exactly as written; renderers validate it before display.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
	Href string   `json:"href,omitempty"`
}

// inlineRule pairs a pattern with the span it produces. The order of
// inlineRules is the tie-break order when two rules match at the same
// offset.
type inlineRule struct {
	kind SpanKind
	re   *regexp.Regexp
}

var inlineRules = []inlineRule{
	{SpanBold, regexp.MustCompile(`\*\*(.*?)\*\*`)},
	{SpanItalic, regexp.MustCompile(`\*(.*?)\*`)},
	{SpanCode, regexp.MustCompile("`([^`]+)`")},
	{SpanLink, regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)},
}

// ParseInline tokenizes raw into spans left to right. At each position the
// earliest-starting match of the four rules wins, with ties going to the
// rule order bold, italic, code, link. Matched text is never rescanned, so
// markers inside code spans and link targets stay literal.
//
// Each rule's next match is remembered as an absolute offset and searched
// again only once the cursor has moved past its start, which keeps long
// lines linear. None of the patterns use anchors or boundaries, so a match
// found from an earlier offset is still the leftmost one from any later
// offset up to its start.
func ParseInline(raw string) []Span {
	var spans []Span
	next := make([][]int, len(inlineRules))
	exhausted := make([]bool, len(inlineRules))
	pos := 0

	for pos < len(raw) {
		best := -1
		for i, rule := range inlineRules {
			if exhausted[i] {
				continue
			}
			if next[i] == nil || next[i][0] < pos {
				loc := rule.re.FindStringSubmatchIndex(raw[pos:])
				if loc == nil {
					exhausted[i] = true
					next[i] = nil
					continue
				}
				for k := range loc {
					if loc[k] >= 0 {
						loc[k] += pos
					}
				}
				next[i] = loc
			}
			if best < 0 || next[i][0] < next[best][0] {
				best = i
			}
		}

		if best < 0 {
			spans = appendPlain(spans, raw[pos:])
			break
		}

		loc := next[best]
		spans = appendPlain(spans, raw[pos:loc[0]])
		span := Span{Kind: inlineRules[best].kind, Text: raw[loc[2]:loc[3]]}
		if span.Kind == SpanLink {
			span.Href = raw[loc[4]:loc[5]]
		}
		spans = append(spans, span)
		pos = loc[1]
	}

	return spans
}

func appendPlain(spans []Span, text string) []Span {
	if text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].Kind == SpanPlain {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Kind: SpanPlain, Text: text})
}

// PlainText flattens spans back to their visible text.
func PlainText(spans []Span) string {
	var n int
	for _, s := range spans {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range spans {
		b = append(b, s.Text...)
	}
	return string(b)
}
