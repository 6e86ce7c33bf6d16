package meta

import (
	"traitnote/internal/source"
)

type ItemKind uint8

const (
	// ItemWord is a bare identifier: `direct`.
	ItemWord ItemKind = iota
	// ItemNameValue is `name = "value"`.
	ItemNameValue
	// ItemList is `name(item, item, ...)`.
	ItemList
	// ItemLiteral is a bare string literal: `"Bar"`.
	ItemLiteral
)

func (k ItemKind) String() string {
	switch k {
	case ItemWord:
		return "word"
	case ItemNameValue:
		return "name-value"
	case ItemList:
		return "list"
	case ItemLiteral:
		return "literal"
	}
	return "unknown"
}

// Item is one nested attribute item. Which fields are meaningful depends
// on Kind: Name for words, name/value pairs and lists; Value for
// name/value pairs and bare literals; Items for lists. Span covers the
// whole item, ValueSpan just the string content between the quotes.
type Item struct {
	Kind      ItemKind
	Name      source.StringID
	Value     source.StringID
	Items     []Item
	Span      source.Span
	NameSpan  source.Span
	ValueSpan source.Span
	// ValueEsc lists the offset in the unescaped value of each character
	// that came from an escape sequence. Consumers that map value
	// offsets back to source bytes add one byte per entry before the
	// offset.
	ValueEsc []uint32
}

// NameStr returns the item's name, or "" for bare literals.
func (it Item) NameStr(in *source.Interner) string {
	if it.Kind == ItemLiteral {
		return ""
	}
	return in.MustLookup(it.Name)
}

// ValueStr returns the item's string value and whether it has one.
// Words and lists have no value.
func (it Item) ValueStr(in *source.Interner) (string, bool) {
	if it.Kind != ItemNameValue && it.Kind != ItemLiteral {
		return "", false
	}
	return in.MustLookup(it.Value), true
}

// IsList reports whether the item is a list with the given name.
func (it Item) IsList(in *source.Interner, name string) bool {
	return it.Kind == ItemList && it.NameStr(in) == name
}

// AttrForm distinguishes the three shapes an attribute occurrence can take.
type AttrForm uint8

const (
	// AttrNone is a bare attribute with no value: `#[on_unimplemented]`.
	AttrNone AttrForm = iota
	// AttrString is `#[on_unimplemented = "..."]`.
	AttrString
	// AttrList is `#[on_unimplemented(...)]`.
	AttrList
)

// Attr is one attribute occurrence on an item.
type Attr struct {
	Form  AttrForm
	Name  string
	Value string // AttrString only, unescaped
	Items []Item // AttrList only
	Span  source.Span
	// ValueSpan locates the string content for AttrString.
	ValueSpan source.Span
}
