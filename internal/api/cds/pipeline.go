package cds

import (
	"net/http"
	"strconv"

	"github.com/abdesslem/cds/internal/domain"
)

// BuildListPipelines lists every pipeline of the project.
func BuildListPipelines(key string) (*Request, error) {
	p, err := Project(key)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodGet, p.Pipelines(), ResponseJSON), nil
}

// BuildGetPipeline reads one pipeline. The applications, workflows and
// environments using it are always requested inline.
func BuildGetPipeline(key, name string) (*Request, error) {
	p, err := PipelineOf(key, name)
	if err != nil {
		return nil, err
	}
	r := newRequest(http.MethodGet, p.Path(), ResponseJSON)
	r.Query.Set("withApplications", "true")
	r.Query.Set("withWorkflows", "true")
	r.Query.Set("withEnvironments", "true")
	return r, nil
}

// BuildCreatePipeline creates pip in the project.
func BuildCreatePipeline(key string, pip domain.Pipeline) (*Request, error) {
	p, err := Project(key)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodPost, p.Pipelines(), ResponseJSON).withJSON(pip)
}

// BuildUpdatePipeline replaces the pipeline currently named oldName with pip.
// pip.Name may differ from oldName, which renames the pipeline.
func BuildUpdatePipeline(key, oldName string, pip domain.Pipeline) (*Request, error) {
	p, err := PipelineOf(key, oldName)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodPut, p.Path(), ResponseJSON).withJSON(pip)
}

// BuildDeletePipeline deletes a pipeline. Its result is a bare success signal.
func BuildDeletePipeline(key, name string) (*Request, error) {
	p, err := PipelineOf(key, name)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodDelete, p.Path(), ResponseSuccess), nil
}

// BuildRollbackPipeline restores the pipeline to audit revision auditID. The
// revision travels in the address; the body is empty.
func BuildRollbackPipeline(key, name string, auditID int64) (*Request, error) {
	p, err := PipelineOf(key, name)
	if err != nil {
		return nil, err
	}
	if err := validateID("auditID", auditID); err != nil {
		return nil, err
	}
	return newRequest(http.MethodPost, p.Path()+"/rollback/"+strconv.FormatInt(auditID, 10), ResponseJSON), nil
}

// BuildListAudits lists the revisions a pipeline can be rolled back to.
func BuildListAudits(key, name string) (*Request, error) {
	p, err := PipelineOf(key, name)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodGet, p.Path()+"/audits", ResponseJSON), nil
}

// BuildListApplications lists the applications consuming a pipeline.
func BuildListApplications(key, name string) (*Request, error) {
	p, err := PipelineOf(key, name)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodGet, p.Path()+"/application", ResponseJSON), nil
}
