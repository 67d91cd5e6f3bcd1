package cds

import (
	"net/http"

	"github.com/abdesslem/cds/internal/domain"
)

// ParameterChange is the input of a parameter update. Build it with
// ParameterUpdate or ParameterRename.
type ParameterChange struct {
	rename bool
	from   string
	param  domain.Parameter
}

// ParameterUpdate changes a parameter in place; it is addressed by p.Name.
func ParameterUpdate(p domain.Parameter) ParameterChange {
	return ParameterChange{param: p}
}

// ParameterRename changes the parameter currently named from into p. The
// request is addressed by from while the body carries p.Name.
func ParameterRename(from string, p domain.Parameter) ParameterChange {
	return ParameterChange{rename: true, from: from, param: p}
}

// IsRename reports whether the change targets a different name than it sends.
func (c ParameterChange) IsRename() bool {
	return c.rename && c.from != c.param.Name
}

// Target is the name the request is addressed to.
func (c ParameterChange) Target() string {
	if c.rename {
		return c.from
	}
	return c.param.Name
}

// Parameter is the value sent in the body.
func (c ParameterChange) Parameter() domain.Parameter {
	return c.param
}

// BuildAddParameter adds param to the pipeline.
func BuildAddParameter(key, pipName string, param domain.Parameter) (*Request, error) {
	a, err := parameterAddress(key, pipName, param.Name)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodPost, a.Path(), ResponseJSON).withJSON(param)
}

// BuildUpdateParameter updates or renames a parameter. The body is always the
// normalized parameter.
func BuildUpdateParameter(key, pipName string, change ParameterChange) (*Request, error) {
	a, err := parameterAddress(key, pipName, change.Target())
	if err != nil {
		return nil, err
	}
	if err := validateSegment("name", change.param.Name); err != nil {
		return nil, err
	}
	return newRequest(http.MethodPut, a.Path(), ResponseJSON).withJSON(change.param.Normalized())
}

// BuildDeleteParameter removes the named parameter.
func BuildDeleteParameter(key, pipName, name string) (*Request, error) {
	a, err := parameterAddress(key, pipName, name)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodDelete, a.Path(), ResponseJSON), nil
}

func parameterAddress(key, pipName, name string) (ParameterAddress, error) {
	p, err := PipelineOf(key, pipName)
	if err != nil {
		return ParameterAddress{}, err
	}
	return p.Parameter(name)
}
