package cds

import (
	"net/http"
	"net/url"
)

// ImportOptions tunes an import.
type ImportOptions struct {
	// Force overwrites an existing pipeline of the same name.
	Force bool
}

// BuildCreateFromImport creates a pipeline from its textual definition.
func BuildCreateFromImport(key, code string, opts ImportOptions) (*Request, error) {
	return buildImport(key, "", code, opts)
}

// BuildReplaceFromImport replaces the named pipeline with the textual
// definition. Unlike BuildCreateFromImport this is an idempotent PUT.
func BuildReplaceFromImport(key, name, code string, opts ImportOptions) (*Request, error) {
	if err := validateSegment("pipelineName", name); err != nil {
		return nil, err
	}
	return buildImport(key, name, code, opts)
}

// buildImport is the only place where the verb depends on an argument: no
// name targets the collection with POST, a name targets that pipeline with PUT.
func buildImport(key, name, code string, opts ImportOptions) (*Request, error) {
	p, err := Project(key)
	if err != nil {
		return nil, err
	}

	method, path := http.MethodPost, p.Path()+"/import/pipeline"
	if name != "" {
		method, path = http.MethodPut, path+"/"+url.PathEscape(name)
	}

	r := newRequest(method, path, ResponseJSON).withYAMLSource(code)
	if opts.Force {
		r.Query.Set("forceUpdate", "true")
	}
	return r, nil
}

// BuildPreviewPipeline parses a textual definition without persisting it.
func BuildPreviewPipeline(key, code string) (*Request, error) {
	p, err := Project(key)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodPost, p.Path()+"/preview/pipeline", ResponseJSON).withYAMLSource(code), nil
}

// BuildExportPipeline fetches the textual definition of a pipeline.
func BuildExportPipeline(key, name string) (*Request, error) {
	p, err := Project(key)
	if err != nil {
		return nil, err
	}
	if err := validateSegment("pipelineName", name); err != nil {
		return nil, err
	}
	return newRequest(http.MethodGet, p.Path()+"/export/pipeline/"+url.PathEscape(name), ResponseJSON).asTextExport(), nil
}

// BuildPullPipeline fetches the textual definition as stored for the
// project's repository view.
func BuildPullPipeline(key, name string) (*Request, error) {
	p, err := Project(key)
	if err != nil {
		return nil, err
	}
	if err := validateSegment("pipelineName", name); err != nil {
		return nil, err
	}
	return newRequest(http.MethodGet, p.Path()+"/pull/pipeline/"+url.PathEscape(name), ResponseJSON).asTextExport(), nil
}
