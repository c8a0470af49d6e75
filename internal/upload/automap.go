package upload

// Mapping maps a schema field name to a source header.
type Mapping map[string]string

func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Ambiguity reports a field that more than one header matched. Chosen is the
// header that was mapped; Others were ignored.
type Ambiguity struct {
	Field  string   `json:"field"`
	Chosen string   `json:"chosen"`
	Others []string `json:"others"`
}

// AutoMap proposes a mapping by normalized equality of a field's name or label
// with each header. Headers are scanned in their source order and the first
// match wins; later matches are reported as ambiguities. Fields without a
// match stay unmapped.
func AutoMap(schema []Field, headers []string) (Mapping, []Ambiguity) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	m := Mapping{}
	var amb []Ambiguity
	for _, f := range schema {
		name, label := Normalize(f.Name), Normalize(f.Label)
		var matches []string
		for i, h := range normalized {
			if h == "" {
				continue
			}
			if h == name || (label != "" && h == label) {
				matches = append(matches, headers[i])
			}
		}
		if len(matches) == 0 {
			continue
		}
		m[f.Name] = matches[0]
		if len(matches) > 1 {
			amb = append(amb, Ambiguity{Field: f.Name, Chosen: matches[0], Others: matches[1:]})
		}
	}
	return m, amb
}
