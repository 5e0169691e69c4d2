package cart

// Line is a single cart entry as staged by the student.
// Multiple lines may refer to the same physical item in different sizes;
// quota accounting pools them by entitlement key, not by line.
type Line struct {
	ProductName    string  `json:"product_name"`
	Size           string  `json:"size,omitempty"` // empty for sizeless items (patches, laces)
	EducationLevel string  `json:"education_level,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"` // display only; items are free-of-charge
}

// Sized reports whether the line is a sized garment. Sizeless lines skip
// per-size stock matching entirely.
func (l Line) Sized() bool {
	return l.Size != ""
}
