package markdown

// Substitute formats raw with four blind global replacements applied in
// order: bold, italic, inline code, link. Each pass runs over the output
// of the previous one, so markup inserted early can be rewritten by a
// later pass (a backtick pair around *x* yields <code><em>x</em></code>).
//
// The result is unescaped markup. It exists for compatibility with
// output produced by older clients and must go through
// render.SanitizeLegacy before display. New code uses ParseInline.
func Substitute(raw string) string {
	text := raw
	for _, rule := range inlineRules {
		text = rule.re.ReplaceAllString(text, legacyTemplates[rule.kind])
	}
	return text
}

var legacyTemplates = map[SpanKind]string{
	SpanBold:   `<strong>${1}</strong>`,
	SpanItalic: `<em>${1}</em>`,
	SpanCode:   `<code class="bg-muted px-1 py-0.5 rounded text-sm font-mono">${1}</code>`,
	SpanLink:   `<a href="${2}" class="text-primary hover:underline" target="_blank" rel="noopener noreferrer">${1}</a>`,
}
