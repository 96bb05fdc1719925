// Package document loads collected pages and locates tables and text
// fragments inside them.
//
// Lookups never fail for a missing element: absence is reported through the
// boolean result, since not every season or team page carries every table.
package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var commentDelimiters = strings.NewReplacer("<!--", "", "-->", "")

// Document is a parsed page.
type Document struct {
	doc *goquery.Document
}

// Load reads the raw text of a collected page.
func Load(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(b), nil
}

// Parse parses text as served. Commented-out markup stays invisible, so
// positional table indices count live tables only.
func Parse(text string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseUncommented parses text after removing comment delimiters, which turns
// tables the source ships inside comments into live markup.
func ParseUncommented(text string) (*Document, error) {
	return Parse(commentDelimiters.Replace(text))
}

// LoadFile reads and parses a page, optionally uncommenting it.
func LoadFile(path string, uncomment bool) (*Document, error) {
	text, err := Load(path)
	if err != nil {
		return nil, err
	}
	if uncomment {
		return ParseUncommented(text)
	}
	return Parse(text)
}

// FindByID returns the element with the given id.
func (d *Document) FindByID(id string) (*Fragment, bool) {
	sel := d.doc.Find(fmt.Sprintf("[id=%q]", id)).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &Fragment{sel: sel}, true
}

// FindAll returns every element matching a CSS selector, in document order.
func (d *Document) FindAll(selector string) []*Fragment {
	return fragments(d.doc.Find(selector))
}

// First returns the first element matching a CSS selector.
func (d *Document) First(selector string) (*Fragment, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &Fragment{sel: sel}, true
}

// Table returns the table at a zero-based position among all tables.
func (d *Document) Table(index int) (*Fragment, bool) {
	tables := d.doc.Find("table")
	if index < 0 || index >= tables.Length() {
		return nil, false
	}
	return &Fragment{sel: tables.Eq(index)}, true
}

// TableCount returns the number of tables in the document.
func (d *Document) TableCount() int {
	return d.doc.Find("table").Length()
}

// Text returns the text content of the whole document.
func (d *Document) Text() string {
	return d.doc.Text()
}

// Fragment is one located element.
type Fragment struct {
	sel *goquery.Selection
}

// Text returns the element text with whitespace collapsed.
func (f *Fragment) Text() string {
	return clean(f.sel.Text())
}

// Attr returns an attribute value.
func (f *Fragment) Attr(name string) (string, bool) {
	return f.sel.Attr(name)
}

// FindAll returns descendants matching a CSS selector.
func (f *Fragment) FindAll(selector string) []*Fragment {
	return fragments(f.sel.Find(selector))
}

func fragments(sel *goquery.Selection) []*Fragment {
	out := make([]*Fragment, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Fragment{sel: s})
	})
	return out
}

// clean collapses runs of whitespace, including non-breaking spaces.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
