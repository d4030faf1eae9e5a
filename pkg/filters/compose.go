package filters

import "strings"

// Term renders one filter as it appears in a filter expression:
// name(value<unit>).
func Term(name string, d FilterDescriptor) string {
	def, _ := Lookup(name)
	return name + "(" + d.Value + def.Unit + ")"
}

// Compose serializes a filter set into a single filter expression with one
// term per registry filter, in registry order, joined by single spaces.
// Filters missing from set contribute their registry default.
func Compose(set FilterSet) string {
	terms := make([]string, 0, len(registry))
	for _, def := range registry {
		d, ok := set[def.Name]
		if !ok {
			d = def.Default
		}
		terms = append(terms, Term(def.Name, d))
	}
	return strings.Join(terms, " ")
}
