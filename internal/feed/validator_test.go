package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := Record{Barcode: "7791234567890", Title: "Yerba Mate 1kg", RawPrice: "1500,00"}

	tests := []struct {
		name            string
		mutate          func(r *Record)
		expectedMissing []string
	}{
		{
			name:   "all required fields present",
			mutate: func(r *Record) {},
		},
		{
			name:            "missing barcode",
			mutate:          func(r *Record) { r.Barcode = "" },
			expectedMissing: []string{"barcode"},
		},
		{
			name:            "missing title",
			mutate:          func(r *Record) { r.Title = "" },
			expectedMissing: []string{"title"},
		},
		{
			name:            "missing price",
			mutate:          func(r *Record) { r.RawPrice = "" },
			expectedMissing: []string{"price"},
		},
		{
			name: "all required fields missing",
			mutate: func(r *Record) {
				r.Barcode = ""
				r.Title = ""
				r.RawPrice = ""
			},
			expectedMissing: []string{"barcode", "title", "price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid
			tt.mutate(&record)

			err := Validate(record)
			if len(tt.expectedMissing) == 0 {
				assert.NoError(t, err)
				return
			}

			var invalid *InvalidRecordError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.expectedMissing, invalid.MissingFields)
		})
	}
}

func TestValidateOptionalFieldsNotRequired(t *testing.T) {
	record := Record{
		Barcode:  "123",
		Title:    "Producto",
		RawPrice: "10",
		// image, description, brand, attributes all absent
	}
	assert.NoError(t, Validate(record))
}
