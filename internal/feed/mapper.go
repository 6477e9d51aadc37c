package feed

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DefaultCurrency is applied to every record; the vendor feed never
// carries a currency tag.
const DefaultCurrency = "ARS"

// Fallback precedence chains: for each logical field the candidate tags
// are tried in order and the first non-empty text wins.
var (
	barcodeTags     = []string{"cod_ean", "codigo", "id"}
	priceTags       = []string{"precio_web", "precio", "precio_mayorista"}
	descriptionTags = []string{"descripcion_detallada", "descripcion"}
	imageTags       = []string{
		"imagen_jpg_600_1",
		"imagen_jpg_300_1",
		"imagen_jpg_150_1",
		"imagen_webp_600_1",
		"imagen_jpg_originales_1",
	}
	attributeTags = []string{"linea", "rubro", "sub_rubro", "talle", "marca", "id", "codigo", "stock"}
)

const imageTagPrefix = "imagen"

// Attribute is one secondary feed field kept on the record.
type Attribute struct {
	Key   string
	Value string
}

// Attributes preserves the feed's field order. Empty-valued entries are
// never stored.
type Attributes []Attribute

// Get returns the value for a key, or "".
func (a Attributes) Get(key string) string {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// MarshalJSON renders the attributes as a JSON object in insertion order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Record is the normalized in-memory representation of one feed item.
// Validity is not judged here; absent fields are empty strings.
type Record struct {
	Barcode     string
	Title       string
	RawPrice    string
	Currency    string
	ImageURL    string
	Description string
	Brand       string
	Attributes  Attributes
}

// MapItem maps one item node to a Record using the fallback precedence
// chains. It is a pure transformation and never fails; the Validator
// decides whether the result is usable.
func MapItem(item *Item) Record {
	return Record{
		Barcode:     firstText(item, barcodeTags),
		Title:       item.Text("nombre"),
		RawPrice:    firstText(item, priceTags),
		Currency:    DefaultCurrency,
		ImageURL:    collectImage(item),
		Description: firstText(item, descriptionTags),
		Brand:       item.Text("marca"),
		Attributes:  collectAttributes(item),
	}
}

// firstText resolves a fallback chain to its first non-empty candidate.
func firstText(item *Item, tags []string) string {
	for _, tag := range tags {
		if text := item.Text(tag); text != "" {
			return text
		}
	}
	return ""
}

// collectImage tries the preferred image tags in priority order, then
// falls back to the first tag starting with "imagen" that has non-empty
// text, in document order.
func collectImage(item *Item) string {
	if url := firstText(item, imageTags); url != "" {
		return url
	}
	for _, f := range item.Fields() {
		if strings.HasPrefix(f.Tag, imageTagPrefix) && f.Text != "" {
			return f.Text
		}
	}
	return ""
}

// collectAttributes gathers the fixed secondary tags, excluding any whose
// text is empty or absent.
func collectAttributes(item *Item) Attributes {
	attrs := make(Attributes, 0, len(attributeTags))
	for _, tag := range attributeTags {
		if text := item.Text(tag); text != "" {
			attrs = append(attrs, Attribute{Key: tag, Value: text})
		}
	}
	return attrs
}
