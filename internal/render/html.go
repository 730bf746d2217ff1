package render

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"chatterm/internal/markdown"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	classRe    = regexp.MustCompile(`^[A-Za-z0-9 _.:/-]+$`)
	langUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// htmlPolicy allows exactly what HTML and Substitute emit. Links get
// target=_blank and rel=noopener noreferrer added by the policy itself.
func htmlPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("div", "p", "h1", "h2", "h3", "ul", "ol", "li",
			"blockquote", "pre", "code", "strong", "em", "span", "a")
		p.AllowAttrs("href").OnElements("a")
		p.AllowAttrs("class").Matching(classRe).OnElements("div", "pre", "code", "span", "a")
		p.AllowURLSchemes("http", "https")
		p.AllowRelativeURLs(true)
		p.RequireParseableURLs(true)
		p.RequireNoReferrerOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// HTML renders blocks as sanitized HTML. Literal text is escaped, link
// targets other than http(s) URLs and relative paths are dropped (the link
// text is kept), and the result goes through the sanitizer policy.
func HTML(blocks []markdown.Block) string {
	var sb strings.Builder
	sb.WriteString(`<div class="markdown-content">`)

	for _, b := range blocks {
		switch b.Kind {
		case markdown.KindCode:
			lang := langUnsafe.ReplaceAllString(b.Language, "")
			sb.WriteString(`<div class="code-block"><div class="code-header">`)
			sb.WriteString(html.EscapeString(b.Label()))
			sb.WriteString(`</div><pre>`)
			if lang != "" {
				fmt.Fprintf(&sb, `<code class="language-%s">`, lang)
			} else {
				sb.WriteString(`<code>`)
			}
			sb.WriteString(html.EscapeString(b.Content))
			sb.WriteString(`</code></pre></div>`)

		case markdown.KindHeading:
			fmt.Fprintf(&sb, "<h%d>%s</h%d>", b.Level, inlineHTML(b.Text), b.Level)

		case markdown.KindBulletList:
			writeList(&sb, "ul", b.Items)

		case markdown.KindNumberedList:
			// <ol> numbers its items by position; source digits are gone.
			writeList(&sb, "ol", b.Items)

		case markdown.KindBlockquote:
			sb.WriteString("<blockquote>")
			for _, line := range b.Lines {
				sb.WriteString("<p>" + inlineHTML(line) + "</p>")
			}
			sb.WriteString("</blockquote>")

		case markdown.KindParagraph:
			sb.WriteString("<p>" + inlineHTML(b.Text) + "</p>")

		case markdown.KindSpacer:
			sb.WriteString(`<div class="spacer"></div>`)
		}
	}

	sb.WriteString("</div>")
	return htmlPolicy().Sanitize(sb.String())
}

// HTMLString scans text and renders it as HTML.
func HTMLString(text string) string {
	return HTML(markdown.Scan(text))
}

// SanitizeLegacy sanitizes the markup produced by markdown.Substitute.
func SanitizeLegacy(raw string) string {
	return htmlPolicy().Sanitize(markdown.Substitute(raw))
}

func writeList(sb *strings.Builder, tag string, items []string) {
	sb.WriteString("<" + tag + ">")
	for _, item := range items {
		sb.WriteString("<li>" + inlineHTML(item) + "</li>")
	}
	sb.WriteString("</" + tag + ">")
}

func inlineHTML(raw string) string {
	var sb strings.Builder
	for _, s := range markdown.ParseInline(raw) {
		text := html.EscapeString(s.Text)
		switch s.Kind {
		case markdown.SpanBold:
			sb.WriteString("<strong>" + text + "</strong>")
		case markdown.SpanItalic:
			sb.WriteString("<em>" + text + "</em>")
		case markdown.SpanCode:
			sb.WriteString("<code>" + text + "</code>")
		case markdown.SpanLink:
			if href, ok := SafeHref(s.Href); ok {
				sb.WriteString(`<a href="` + html.EscapeString(href) + `">` + text + "</a>")
			} else {
				sb.WriteString(text)
			}
		default:
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// SafeHref reports whether href may be used as a link target: an absolute
// http(s) URL with a host, or a relative path. Protocol-relative URLs
// ("//host/x") are rejected.
func SafeHref(href string) (string, bool) {
	h := strings.TrimSpace(href)
	if h == "" || strings.HasPrefix(h, "//") || strings.HasPrefix(h, `\\`) {
		return "", false
	}
	u, err := url.Parse(h)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return h, u.Host != ""
	case "":
		return h, true
	default:
		return "", false
	}
}
