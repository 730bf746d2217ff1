package markdown

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func plain(s string) Span  { return Span{Kind: SpanPlain, Text: s} }
func bold(s string) Span   { return Span{Kind: SpanBold, Text: s} }
func italic(s string) Span { return Span{Kind: SpanItalic, Text: s} }
func code(s string) Span   { return Span{Kind: SpanCode, Text: s} }
func link(text, href string) Span {
	return Span{Kind: SpanLink, Text: text, Href: href}
}

func TestParseInline(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Span
	}{
		{"empty", "", nil},
		{"no markers", "just text", []Span{plain("just text")}},
		{
			"all four in order",
			"**bold** and *italic* and `code` and [t](http://x))",
			[]Span{
				bold("bold"), plain(" and "),
				italic("italic"), plain(" and "),
				code("code"), plain(" and "),
				link("t", "http://x"), plain(")"),
			},
		},
		{"parenthetical after italic is not a link", "*a* (b)", []Span{italic("a"), plain(" (b)")}},
		{"emphasis inside code stays literal", "`*x*`", []Span{code("*x*")}},
		{"emphasis inside link target stays literal", "[t](http://x/*a*)", []Span{link("t", "http://x/*a*")}},
		{"earliest match wins over rule order", "x `a` **b**", []Span{plain("x "), code("a"), plain(" "), bold("b")}},
		{"bold beats italic at the same offset", "**b**", []Span{bold("b")}},
		{"non-greedy bold", "**a** mid **b**", []Span{bold("a"), plain(" mid "), bold("b")}},
		{"lone asterisk passes through", "2 * 3 = 6", []Span{plain("2 * 3 = 6")}},
		{"spaced asterisks pair up", "a * b * c", []Span{plain("a "), italic(" b "), plain(" c")}},
		{"unclosed bold leaves an empty italic", "**unclosed", []Span{italic(""), plain("unclosed")}},
		{"empty code does not match", "`` empty", []Span{plain("`` empty")}},
		{"two links", "[a](1) and [b](2)", []Span{link("a", "1"), plain(" and "), link("b", "2")}},
		{"brackets without target", "[no link] (here)", []Span{plain("[no link] (here)")}},
		{"unicode text", "héllo **wörld**", []Span{plain("héllo "), bold("wörld")}},
		{"markup is not interpreted", "<b>x</b>", []Span{plain("<b>x</b>")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInline(tt.raw))
		})
	}
}

func TestPlainText(t *testing.T) {
	spans := ParseInline("**a** b `c` [d](e)")
	assert.Equal(t, "a b c d", PlainText(spans))
}

func TestSubstitute(t *testing.T) {
	const codeOpen = `<code class="bg-muted px-1 py-0.5 rounded text-sm font-mono">`
	const linkAttrs = `class="text-primary hover:underline" target="_blank" rel="noopener noreferrer"`

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bold", "**bold**", "<strong>bold</strong>"},
		{"italic", "*it*", "<em>it</em>"},
		{"code", "`x`", codeOpen + "x</code>"},
		{"link", "[t](http://x)", `<a href="http://x" ` + linkAttrs + `>t</a>`},
		{
			"all four",
			"**bold** and *italic* and `code` and [t](http://x))",
			"<strong>bold</strong> and <em>italic</em> and " + codeOpen + "code</code> and " +
				`<a href="http://x" ` + linkAttrs + `>t</a>)`,
		},
		// The parenthetical never becomes a link: the link rule needs [...].
		{"italic then parenthetical", "*a* (b)", "<em>a</em> (b)"},
		// Italic runs before code, so the code span wraps inserted markup.
		{"italic mangled inside code", "`*x*`", codeOpen + "<em>x</em></code>"},
		// Italic runs before link, so the target picks up inserted markup.
		{"italic mangled inside href", "[t](http://x/*a*)", `<a href="http://x/<em>a</em>" ` + linkAttrs + `>t</a>`},
		{"no escaping", "a <script> b", "a <script> b"},
		{"empty emphasis", "**", "<em></em>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.raw))
		})
	}
}

func TestSpanKindString(t *testing.T) {
	assert.Equal(t, "link", SpanLink.String())
	assert.Equal(t, "unknown", SpanKind(42).String())
}

// parseInlineRescan is the direct form of the tokenizer: every rule is
// searched again from the cursor on each step.
func parseInlineRescan(raw string) []Span {
	var spans []Span
	for pos := 0; pos < len(raw); {
		rest := raw[pos:]
		var best []int
		var kind SpanKind
		for _, rule := range inlineRules {
			if loc := rule.re.FindStringSubmatchIndex(rest); loc != nil && (best == nil || loc[0] < best[0]) {
				best, kind = loc, rule.kind
			}
		}
		if best == nil {
			return appendPlain(spans, rest)
		}
		spans = appendPlain(spans, rest[:best[0]])
		span := Span{Kind: kind, Text: rest[best[2]:best[3]]}
		if kind == SpanLink {
			span.Href = rest[best[4]:best[5]]
		}
		spans = append(spans, span)
		pos += best[1]
	}
	return spans
}

func TestParseInline_MatchesRescan(t *testing.T) {
	inputs := []string{
		"**a** *b* `c` [d](e)",
		"*a **b** c*",
		"`*x*` [*y*](z) **`w`**",
		"[a](b) [c](d)*e*",
		"** * ** `",
	}
	rng := rand.New(rand.NewSource(1))
	const alphabet = "*`[]()ab \n"
	for range 500 {
		b := make([]byte, rng.Intn(40))
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		inputs = append(inputs, string(b))
	}

	for _, raw := range inputs {
		assert.Equal(t, parseInlineRescan(raw), ParseInline(raw), "input %q", raw)
	}
}

func TestParseInline_LongLineIsLinear(t *testing.T) {
	const n = 1 << 16
	raw := strings.Repeat("*a* ", n) // 256 KiB

	start := time.Now()
	spans := ParseInline(raw)
	elapsed := time.Since(start)

	assert.Len(t, spans, 2*n)
	assert.Less(t, elapsed, 500*time.Millisecond, "ParseInline on %d bytes", len(raw))
}
