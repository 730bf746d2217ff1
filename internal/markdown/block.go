// Package markdown turns assistant text into typed display blocks and
// inline spans. It recognizes a small fixed subset of markdown: code
// fences, three heading levels, bullet and numbered lists, blockquotes,
// and four inline patterns. Everything else is a paragraph.
//
// Scan and ParseInline are pure functions of their input. Callers
// re-run them on the full text on every render.
package markdown

import (
	"fmt"
	"strings"
)

// Kind identifies the variant held by a Block.
type Kind int

const (
	KindParagraph Kind = iota
	KindCode
	KindHeading
	KindBulletList
	KindNumberedList
	KindBlockquote
	KindSpacer
)

var kindNames = [...]string{
	KindParagraph:    "paragraph",
	KindCode:         "code",
	KindHeading:      "heading",
	KindBulletList:   "bullet_list",
	KindNumberedList: "numbered_list",
	KindBlockquote:   "blockquote",
	KindSpacer:       "spacer",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText lets a []Block be dumped as readable JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown block kind %q", string(b))
}

// Block is one display unit produced by Scan. Only the fields that belong
// to Kind are set:
//
//	KindCode          Language, Content
//	KindHeading       Level, Text
//	KindParagraph     Text
//	KindBulletList    Items
//	KindNumberedList  Items
//	KindBlockquote    Lines
//	KindSpacer        (none)
//
// Text, Items and Lines hold raw inline markdown.
type Block struct {
	Kind     Kind     `json:"kind" yaml:"kind"`
	Language string   `json:"language,omitempty" yaml:"language,omitempty"`
	Content  string   `json:"content,omitempty" yaml:"content,omitempty"`
	Level    int      `json:"level,omitempty" yaml:"level,omitempty"`
	Text     string   `json:"text,omitempty" yaml:"text,omitempty"`
	Items    []string `json:"items,omitempty" yaml:"items,omitempty"`
	Lines    []string `json:"lines,omitempty" yaml:"lines,omitempty"`
}

func CodeBlock(language, content string) Block {
	return Block{Kind: KindCode, Language: language, Content: content}
}

func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

func BulletList(items ...string) Block {
	return Block{Kind: KindBulletList, Items: items}
}

func NumberedList(items ...string) Block {
	return Block{Kind: KindNumberedList, Items: items}
}

func Blockquote(lines ...string) Block {
	return Block{Kind: KindBlockquote, Lines: lines}
}

func Paragraph(text string) Block {
	return Block{Kind: KindParagraph, Text: text}
}

func Spacer() Block {
	return Block{Kind: KindSpacer}
}

// Label is the header shown above a code block.
func (b Block) Label() string {
	if b.Language == "" {
		return "code"
	}
	return b.Language
}

// RawLines returns the source lines the block was built from, minus the
// markers the scanner stripped. Fence lines are not included.
func (b Block) RawLines() []string {
	switch b.Kind {
	case KindCode:
		return strings.Split(b.Content, "\n")
	case KindHeading, KindParagraph:
		return []string{b.Text}
	case KindBulletList, KindNumberedList:
		return b.Items
	case KindBlockquote:
		return b.Lines
	default:
		return nil
	}
}
