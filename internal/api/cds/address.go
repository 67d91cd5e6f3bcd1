package cds

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/abdesslem/cds/internal/domain"
)

// ProjectAddress roots every resource path.
type ProjectAddress struct {
	Key string
}

// PipelineAddress identifies a pipeline by (project key, pipeline name).
type PipelineAddress struct {
	ProjectAddress
	Pipeline string
}

// StageAddress identifies a stage inside a pipeline.
type StageAddress struct {
	PipelineAddress
	StageID int64
}

// JobAddress identifies a job inside a stage.
type JobAddress struct {
	StageAddress
	ActionID int64
}

// ParameterAddress identifies a pipeline parameter by name.
type ParameterAddress struct {
	PipelineAddress
	Name string
}

// Project validates key and returns its address.
func Project(key string) (ProjectAddress, error) {
	if err := validateSegment("projectKey", key); err != nil {
		return ProjectAddress{}, err
	}
	return ProjectAddress{Key: key}, nil
}

// PipelineOf validates both identifiers and returns the pipeline address.
func PipelineOf(key, name string) (PipelineAddress, error) {
	p, err := Project(key)
	if err != nil {
		return PipelineAddress{}, err
	}
	return p.Pipeline(name)
}

// Pipeline returns the address of the named pipeline in this project.
func (a ProjectAddress) Pipeline(name string) (PipelineAddress, error) {
	if err := validateSegment("pipelineName", name); err != nil {
		return PipelineAddress{}, err
	}
	return PipelineAddress{ProjectAddress: a, Pipeline: name}, nil
}

// Stage returns the address of stage id in this pipeline.
func (a PipelineAddress) Stage(id int64) (StageAddress, error) {
	if err := validateID("stageID", id); err != nil {
		return StageAddress{}, err
	}
	return StageAddress{PipelineAddress: a, StageID: id}, nil
}

// Job returns the address of job actionID in this stage.
func (a StageAddress) Job(actionID int64) (JobAddress, error) {
	if err := validateID("actionID", actionID); err != nil {
		return JobAddress{}, err
	}
	return JobAddress{StageAddress: a, ActionID: actionID}, nil
}

// Parameter returns the address of the named parameter in this pipeline.
func (a PipelineAddress) Parameter(name string) (ParameterAddress, error) {
	if err := validateSegment("parameterName", name); err != nil {
		return ParameterAddress{}, err
	}
	return ParameterAddress{PipelineAddress: a, Name: name}, nil
}

// Path returns /project/{key}.
func (a ProjectAddress) Path() string {
	return "/project/" + url.PathEscape(a.Key)
}

// Pipelines returns the pipeline collection path of the project.
func (a ProjectAddress) Pipelines() string {
	return a.Path() + "/pipeline"
}

// Path returns /project/{key}/pipeline/{name}.
func (a PipelineAddress) Path() string {
	return a.Pipelines() + "/" + url.PathEscape(a.Pipeline)
}

// Stages returns the stage collection path of the pipeline.
func (a PipelineAddress) Stages() string {
	return a.Path() + "/stage"
}

// Path returns /project/{key}/pipeline/{name}/stage/{id}.
func (a StageAddress) Path() string {
	return a.Stages() + "/" + strconv.FormatInt(a.StageID, 10)
}

// Jobs returns the job collection path of the stage.
func (a StageAddress) Jobs() string {
	return a.Path() + "/job"
}

// Path returns /project/{key}/pipeline/{name}/stage/{id}/job/{actionID}.
func (a JobAddress) Path() string {
	return a.Jobs() + "/" + strconv.FormatInt(a.ActionID, 10)
}

// Path returns /project/{key}/pipeline/{name}/parameter/{param}.
func (a ParameterAddress) Path() string {
	return a.PipelineAddress.Path() + "/parameter/" + url.PathEscape(a.Name)
}

func validateSegment(param, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ErrInvalidArgumentf(param, "must not be empty")
	}
	if strings.TrimSpace(value) != value {
		return domain.ErrInvalidArgumentf(param, "must not have leading or trailing spaces: %q", value)
	}
	if strings.Contains(value, "/") {
		return domain.ErrInvalidArgumentf(param, "must not contain '/': %q", value)
	}
	// Dot segments are collapsed by servers and proxies into another address.
	if value == "." || value == ".." {
		return domain.ErrInvalidArgumentf(param, "must not be a dot segment: %q", value)
	}
	return nil
}

func validateID(param string, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidArgumentf(param, "must be positive, got %d", id)
	}
	return nil
}
