package domain

import (
	"strconv"
	"strings"
)

// Normalized returns the wire representation of p. The type defaults to
// string, and boolean values are rewritten to "true" or "false" so the backend
// never sees "TRUE", "1" or an empty value for a boolean parameter.
func (p Parameter) Normalized() Parameter {
	out := p
	out.Name = strings.TrimSpace(p.Name)
	if out.Type == "" {
		out.Type = ParameterTypeString
	}

	if out.Type == ParameterTypeBoolean {
		b, err := strconv.ParseBool(strings.TrimSpace(out.Value))
		if err != nil {
			b = false
		}
		out.Value = strconv.FormatBool(b)
	}

	return out
}
