// Copyright Text Anonymizer Contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labels

// Mapper rewrites internal entity labels to output (display) labels using
// the global mapping table. Unknown labels map to their normalized selves.
// A label that is already an output value is returned unchanged, so mapping
// an already-mapped label never cascades through the table.
type Mapper struct {
	table   map[string]string
	outputs map[string]struct{}
}

// NewMapper builds a mapper from an input->output table. A nil or empty
// table is valid and makes every label map to its normalized self.
func NewMapper(table map[string]string) *Mapper {
	m := &Mapper{
		table:   make(map[string]string, len(table)),
		outputs: make(map[string]struct{}, len(table)),
	}
	for input, output := range table {
		m.table[Normalize(input)] = output
		m.outputs[output] = struct{}{}
	}
	return m
}

// Map returns the output label for an internal label. Pure lookup, no side
// effects.
func (m *Mapper) Map(label string) string {
	normalized := Normalize(label)
	if _, isOutput := m.outputs[normalized]; isOutput {
		return normalized
	}
	if output, ok := m.table[normalized]; ok {
		return output
	}
	return normalized
}
