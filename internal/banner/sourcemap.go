package banner

import (
	"encoding/json"
	"strings"

	"go.trai.ch/zerr"
)

type mapOffset struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ShiftMap moves every generated position of a v3 source map down by lines.
// Plain maps get leading ';' groups in "mappings"; index maps have each
// section offset moved. Unknown fields are carried over.
func ShiftMap(raw []byte, lines int) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, zerr.With(zerr.Wrap(ErrSourceMap, ""), "cause", err.Error())
	}
	if lines <= 0 {
		return raw, nil
	}

	if rawSections, ok := m["sections"]; ok {
		var sections []map[string]json.RawMessage
		if err := json.Unmarshal(rawSections, &sections); err != nil {
			return nil, zerr.With(zerr.Wrap(ErrSourceMap, ""), "cause", err.Error())
		}
		for _, sec := range sections {
			var off mapOffset
			if o, ok := sec["offset"]; ok {
				if err := json.Unmarshal(o, &off); err != nil {
					return nil, zerr.With(zerr.Wrap(ErrSourceMap, ""), "cause", err.Error())
				}
			}
			off.Line += lines
			b, err := json.Marshal(off)
			if err != nil {
				return nil, err
			}
			sec["offset"] = b
		}
		b, err := json.Marshal(sections)
		if err != nil {
			return nil, err
		}
		m["sections"] = b
		return json.Marshal(m)
	}

	var mappings string
	if rawMappings, ok := m["mappings"]; ok {
		if err := json.Unmarshal(rawMappings, &mappings); err != nil {
			return nil, zerr.With(zerr.Wrap(ErrSourceMap, ""), "cause", err.Error())
		}
	}
	b, err := json.Marshal(strings.Repeat(";", lines) + mappings)
	if err != nil {
		return nil, err
	}
	m["mappings"] = b
	return json.Marshal(m)
}
