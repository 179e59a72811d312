package docid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p9e.in/procurement/pkg/lifecycle"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"three words", "Marine Asia Resources", "MAR"},
		{"more than three words", "north star steel and wire", "NSS"},
		{"two words padded", "Acme Corp", "ACX"},
		{"single word padded", "Globex", "GXX"},
		{"empty", "", "XXX"},
		{"extra whitespace", "  blue   ocean  ", "BOX"},
		{"hyphenated", "Tata-Hitachi Works", "THW"},
		{"leading punctuation", "(old) river mills", "ORM"},
		{"multibyte first initial", "Émile Alpha Beta", "ÉAB"},
		{"multibyte everywhere", "Ölwerk Überseehandel Ägäis Nord", "ÖÜÄ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.in))
		})
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		docType  lifecycle.DocType
		issuer   string
		existing int64
		want     string
	}{
		{"first rfq", lifecycle.RFQ, "Marine Asia Resources", 0, "RFQ-0001"},
		{"quotation", lifecycle.Quotation, "any", 41, "QT-0042"},
		{"purchase order", lifecycle.PurchaseOrder, "any", 9, "PO-0010"},
		{"sales order", lifecycle.SalesOrder, "any", 0, "SO-0001"},
		{"delivery note", lifecycle.DeliveryNote, "any", 2, "DN-0003"},
		{"invoice from initials", lifecycle.Invoice, "Marine Asia Resources", 0, "MARINV0001"},
		{"packing list", lifecycle.PackingList, "Acme Corp", 11, "ACXPL0012"},
		{"contract", lifecycle.Contract, "Globex", 99, "GXXCON0100"},
		{"sequence past four digits", lifecycle.RFQ, "any", 12345, "RFQ-12346"},
		{"negative count treated as zero", lifecycle.RFQ, "any", -3, "RFQ-0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.docType, tt.issuer, tt.existing)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateUnknownType(t *testing.T) {
	_, err := Generate(lifecycle.DocType("WAYBILL"), "any", 0)
	assert.Error(t, err)
}
