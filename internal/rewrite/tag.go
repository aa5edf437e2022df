package rewrite

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr is one tag attribute. Order is preserved across a parse/render
// round trip.
type Attr struct {
	Key string
	Val string
}

// Tag is a single-tag cursor: parsed attributes with get/set operations and
// deterministic rendering. It deliberately does not model a DOM; the
// rewriter works one tag at a time.
type Tag struct {
	name        string
	attrs       []Attr
	selfClosing bool
}

// ParseTag parses a single HTML tag ("<img ...>") into a cursor. Returns
// nil when the input does not start with a tag.
func ParseTag(raw string) *Tag {
	z := html.NewTokenizer(strings.NewReader(raw))
	tt := z.Next()
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return nil
	}
	return tagFromTokenizer(z, tt)
}

// tagFromTokenizer captures the current tag token. Must be called before
// the tokenizer advances again.
func tagFromTokenizer(z *html.Tokenizer, tt html.TokenType) *Tag {
	name, hasAttr := z.TagName()
	t := &Tag{
		name:        string(name),
		selfClosing: tt == html.SelfClosingTagToken,
	}
	for hasAttr {
		key, val, more := z.TagAttr()
		t.attrs = append(t.attrs, Attr{Key: string(key), Val: string(val)})
		hasAttr = more
	}
	return t
}

// Name returns the lowercase tag name.
func (t *Tag) Name() string {
	return t.name
}

// Attr returns the value of the named attribute.
func (t *Tag) Attr(key string) (string, bool) {
	for _, a := range t.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or appends the named attribute, preserving position for
// existing keys.
func (t *Tag) SetAttr(key, val string) {
	for i, a := range t.attrs {
		if a.Key == key {
			t.attrs[i].Val = val
			return
		}
	}
	t.attrs = append(t.attrs, Attr{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute if present.
func (t *Tag) RemoveAttr(key string) {
	for i, a := range t.attrs {
		if a.Key == key {
			t.attrs = append(t.attrs[:i], t.attrs[i+1:]...)
			return
		}
	}
}

// Classes returns the class attribute split into names.
func (t *Tag) Classes() []string {
	val, _ := t.Attr("class")
	return strings.Fields(val)
}

// HasClass reports whether the class list contains name.
func (t *Tag) HasClass(name string) bool {
	for _, c := range t.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends a class exactly once.
func (t *Tag) AddClass(name string) {
	if name == "" || t.HasClass(name) {
		return
	}
	val, ok := t.Attr("class")
	if !ok || strings.TrimSpace(val) == "" {
		t.SetAttr("class", name)
		return
	}
	t.SetAttr("class", strings.TrimSpace(val)+" "+name)
}

// String renders the tag. Attribute values are escaped; attribute order is
// the parse order with appended attributes last, so rendering is
// deterministic.
func (t *Tag) String() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(t.name)
	for _, a := range t.attrs {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteString(`"`)
	}
	if t.selfClosing {
		b.WriteString(" />")
	} else {
		b.WriteString(">")
	}
	return b.String()
}

// fragment is the decomposition of an input fragment around its first <img>
// tag: everything before, the optional single wrapping anchor, the image
// itself, and everything after.
type fragment struct {
	prefix      string
	anchorOpen  string
	innerBefore string
	img         *Tag
	imgRaw      string
	innerAfter  string
	anchorClose string
	suffix      string
}

type token struct {
	raw  string
	tt   html.TokenType
	name string
	tag  *Tag
}

// scanFragment tokenizes the fragment and locates the first <img>, plus a
// wrapping <a> when one directly encloses it. Returns false when no <img>
// exists.
func scanFragment(s string) (*fragment, bool) {
	z := html.NewTokenizer(strings.NewReader(s))
	var tokens []token
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := token{raw: string(z.Raw()), tt: tt}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok.tag = tagFromTokenizer(z, tt)
			tok.name = tok.tag.Name()
		case html.EndTagToken:
			name, _ := z.TagName()
			tok.name = string(name)
		}
		tokens = append(tokens, tok)
	}

	imgIdx := -1
	for i, tok := range tokens {
		if (tok.tt == html.StartTagToken || tok.tt == html.SelfClosingTagToken) && tok.name == "img" {
			imgIdx = i
			break
		}
	}
	if imgIdx < 0 {
		return nil, false
	}

	// A wrapping anchor is an <a> opened before the image and not closed
	// until after it.
	anchorOpenIdx := -1
	for i := 0; i < imgIdx; i++ {
		switch {
		case tokens[i].tt == html.StartTagToken && tokens[i].name == "a":
			anchorOpenIdx = i
		case tokens[i].tt == html.EndTagToken && tokens[i].name == "a":
			anchorOpenIdx = -1
		}
	}
	anchorCloseIdx := -1
	if anchorOpenIdx >= 0 {
		for i := imgIdx + 1; i < len(tokens); i++ {
			if tokens[i].tt == html.EndTagToken && tokens[i].name == "a" {
				anchorCloseIdx = i
				break
			}
		}
		if anchorCloseIdx < 0 {
			anchorOpenIdx = -1
		}
	}

	f := &fragment{img: tokens[imgIdx].tag, imgRaw: tokens[imgIdx].raw}
	join := func(from, to int) string {
		var b strings.Builder
		for i := from; i < to; i++ {
			b.WriteString(tokens[i].raw)
		}
		return b.String()
	}

	if anchorOpenIdx >= 0 {
		f.prefix = join(0, anchorOpenIdx)
		f.anchorOpen = tokens[anchorOpenIdx].raw
		f.innerBefore = join(anchorOpenIdx+1, imgIdx)
		f.innerAfter = join(imgIdx+1, anchorCloseIdx)
		f.anchorClose = tokens[anchorCloseIdx].raw
		f.suffix = join(anchorCloseIdx+1, len(tokens))
	} else {
		f.prefix = join(0, imgIdx)
		f.suffix = join(imgIdx+1, len(tokens))
	}
	return f, true
}
