package upload

import (
	"strings"
	"unicode"
)

// Field is one backend inventory column. Label is what operators see.
type Field struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// DiamondSchema is the backend inventory schema in declaration order.
var DiamondSchema = []Field{
	{Name: "stockId", Label: "Stock #", Required: true},
	{Name: "shape", Label: "Shape"},
	{Name: "carat", Label: "Carat", Required: true},
	{Name: "color", Label: "Color"},
	{Name: "clarity", Label: "Clarity"},
	{Name: "cut", Label: "Cut"},
	{Name: "polish", Label: "Polish"},
	{Name: "symmetry", Label: "Symmetry"},
	{Name: "fluorescence", Label: "Fluorescence"},
	{Name: "lab", Label: "Lab"},
	{Name: "certificateNumber", Label: "Certificate #"},
	{Name: "price", Label: "Price"},
	{Name: "pricePerCarat", Label: "Price / Carat"},
	{Name: "discount", Label: "Discount %"},
	{Name: "depth", Label: "Depth %"},
	{Name: "table", Label: "Table %"},
	{Name: "length", Label: "Length"},
	{Name: "width", Label: "Width"},
	{Name: "height", Label: "Height"},
	{Name: "ratio", Label: "Ratio"},
	{Name: "imageUrl", Label: "Image URL"},
	{Name: "videoUrl", Label: "Video URL"},
	{Name: "availability", Label: "Availability"},
}

// Normalize lowercases s and drops whitespace, hyphens and underscores.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func RequiredFields(schema []Field) []string {
	var out []string
	for _, f := range schema {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

func lookup(schema []Field, name string) (Field, bool) {
	for _, f := range schema {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
