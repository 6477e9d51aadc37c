package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Field is one child element of an item: tag name and trimmed text content.
type Field struct {
	Tag  string
	Text string
}

// Item is one product entry in the feed. It is only valid until the next
// call to Feed.Next.
type Item struct {
	fields   []Field
	children map[string][]Field
}

// Text returns the trimmed text of the first direct child with the given
// tag, or "" when the tag is absent.
func (it *Item) Text(tag string) string {
	for _, f := range it.fields {
		if f.Tag == tag {
			return f.Text
		}
	}
	return ""
}

// Fields returns all direct children in document order.
func (it *Item) Fields() []Field {
	return it.fields
}

// Container returns the children of the first direct child with the given
// tag (e.g. an "attributes" block) as tag/text pairs in document order.
func (it *Item) Container(tag string) []Field {
	return it.children[tag]
}

// Feed is a lazy, single-pass stream of item elements. It is not
// restartable: once Next has returned io.EOF or an error, a new Feed must
// be opened to read the file again.
type Feed struct {
	path string
	dec  *xml.Decoder
}

// Open reads and sanitizes the feed file and positions the stream at the
// document root. It returns ErrFeedNotFound when the path does not exist
// and a MalformedFeedError when no root element can be found.
func Open(path string) (*Feed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, path)
		}
		return nil, fmt.Errorf("reading feed %s: %w", path, err)
	}

	// Feed contract is UTF-8 with decoding errors ignored, not fatal.
	raw = bytes.ToValidUTF8(raw, nil)
	content := Sanitize(string(raw))

	dec := xml.NewDecoder(strings.NewReader(content))
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	// Advance to the root start element.
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, &MalformedFeedError{Path: path, Err: err}
		}
		if _, ok := tok.(xml.StartElement); ok {
			return &Feed{path: path, dec: dec}, nil
		}
	}
}

// Next returns the next item element under the document root. It returns
// io.EOF when the stream is exhausted and a MalformedFeedError when the
// remaining content is not well-formed XML.
func (f *Feed) Next() (*Item, error) {
	for {
		tok, err := f.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, &MalformedFeedError{Path: f.path, Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "item" {
			if err := f.dec.Skip(); err != nil {
				return nil, &MalformedFeedError{Path: f.path, Err: err}
			}
			continue
		}

		item, err := f.decodeItem()
		if err != nil {
			return nil, &MalformedFeedError{Path: f.path, Err: err}
		}
		return item, nil
	}
}

// decodeItem consumes tokens up to the item's end element, collecting
// direct children in document order plus one level of nested container
// children.
func (f *Feed) decodeItem() (*Item, error) {
	item := &Item{children: make(map[string][]Field)}

	for {
		tok, err := f.dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			tag := t.Name.Local
			text, nested, err := f.decodeElement()
			if err != nil {
				return nil, err
			}
			item.fields = append(item.fields, Field{Tag: tag, Text: text})
			if len(nested) > 0 {
				if _, seen := item.children[tag]; !seen {
					item.children[tag] = nested
				}
			}
		case xml.EndElement:
			return item, nil
		}
	}
}

// decodeElement consumes one element's content, returning its trimmed
// text and any child elements as tag/text pairs.
func (f *Feed) decodeElement() (string, []Field, error) {
	var text strings.Builder
	var nested []Field

	for {
		tok, err := f.dec.Token()
		if err != nil {
			return "", nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			childText, _, err := f.decodeElement()
			if err != nil {
				return "", nil, err
			}
			nested = append(nested, Field{Tag: t.Name.Local, Text: childText})
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			return strings.TrimSpace(text.String()), nested, nil
		}
	}
}
