package extract

import "gopkg.in/yaml.v3"

// Candidate is one successfully parsed structured-data mapping recovered from
// raw text. It wraps the parsed document tree, so arbitrary payloads (strings,
// numbers, booleans, nulls, sequences, nested mappings) are representable
// before schema validation narrows them to a concrete type. Provenance is
// implicit in the candidate's position in the extraction result.
type Candidate struct {
	node *yaml.Node
}

// newCandidate wraps a parsed document, rejecting anything that is not a
// non-empty mapping.
func newCandidate(node *yaml.Node) (Candidate, bool) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return Candidate{}, false
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode || len(node.Content) == 0 {
		return Candidate{}, false
	}
	return Candidate{node: node}, true
}

// Keys returns the candidate's top-level keys in document order.
func (c Candidate) Keys() []string {
	keys := make([]string, 0, len(c.node.Content)/2)
	for i := 0; i+1 < len(c.node.Content); i += 2 {
		keys = append(keys, c.node.Content[i].Value)
	}
	return keys
}

// Has reports whether the candidate contains the top-level key.
func (c Candidate) Has(key string) bool {
	for i := 0; i+1 < len(c.node.Content); i += 2 {
		if c.node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Get returns the decoded value of the top-level key.
func (c Candidate) Get(key string) (any, bool) {
	for i := 0; i+1 < len(c.node.Content); i += 2 {
		if c.node.Content[i].Value == key {
			var out any
			if err := c.node.Content[i+1].Decode(&out); err != nil {
				return nil, false
			}
			return out, true
		}
	}
	return nil, false
}

// Decode unmarshals the candidate into out, which follows yaml.v3 decoding
// rules (struct pointers, maps, or *any).
func (c Candidate) Decode(out any) error {
	return c.node.Decode(out)
}

// Map returns the candidate as a generic map.
func (c Candidate) Map() (map[string]any, error) {
	out := map[string]any{}
	if err := c.node.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
