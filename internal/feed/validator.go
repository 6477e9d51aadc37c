package feed

// Required logical fields for a usable record.
const (
	fieldBarcode = "barcode"
	fieldTitle   = "title"
	fieldPrice   = "price"
)

// Validate checks that the record carries all required logical fields.
// It returns nil or an *InvalidRecordError naming the missing fields so
// the caller can log them. Validation failure is never fatal to a batch.
func Validate(r Record) error {
	var missing []string
	if r.Barcode == "" {
		missing = append(missing, fieldBarcode)
	}
	if r.Title == "" {
		missing = append(missing, fieldTitle)
	}
	if r.RawPrice == "" {
		missing = append(missing, fieldPrice)
	}
	if len(missing) > 0 {
		return &InvalidRecordError{MissingFields: missing}
	}
	return nil
}
