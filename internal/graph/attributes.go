package graph

// Attributes stored in a graph are normalised on write, so the typed getters
// only have to deal with string, int64, float64 and nil.

// IsNull reports whether the attribute is present with a nil value
func (a Attributes) IsNull(name string) bool {
	v, ok := a[name]
	return ok && v == nil
}

// String returns a string attribute, or "" when absent or of another type
func (a Attributes) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns an integer attribute
func (a Attributes) Int(name string) (int64, bool) {
	i, ok := a[name].(int64)
	return i, ok
}

// Float returns a float attribute
func (a Attributes) Float(name string) (float64, bool) {
	f, ok := a[name].(float64)
	return f, ok
}
