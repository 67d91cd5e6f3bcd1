package domain

import "time"

// Pipeline is an ordered set of stages plus its parameters, owned by a project.
type Pipeline struct {
	ID           int64       `json:"id,omitempty" yaml:"-"`
	Name         string      `json:"name" yaml:"name"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	ProjectKey   string      `json:"projectKey,omitempty" yaml:"-"`
	Stages       []Stage     `json:"stages,omitempty" yaml:"stages,omitempty"`
	Parameters   []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Usage        *Usage      `json:"usage,omitempty" yaml:"-"`
	Permission   int         `json:"permission,omitempty" yaml:"-"`
	LastModified *time.Time  `json:"last_modified,omitempty" yaml:"-"`
}

// Usage lists the resources consuming a pipeline. It is only filled when the
// read asked for the denormalized sub-resources.
type Usage struct {
	Applications []Application `json:"applications,omitempty"`
	Workflows    []Workflow    `json:"workflows,omitempty"`
	Environments []Environment `json:"environments,omitempty"`
}

// Stage groups jobs that run together. BuildOrder is its position in the pipeline.
type Stage struct {
	ID         int64             `json:"id,omitempty" yaml:"-"`
	Name       string            `json:"name" yaml:"name"`
	PipelineID int64             `json:"pipeline_id,omitempty" yaml:"-"`
	BuildOrder int               `json:"build_order" yaml:"-"`
	Enabled    bool              `json:"enabled" yaml:"enabled"`
	Conditions map[string]string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Jobs       []Job             `json:"jobs,omitempty" yaml:"jobs,omitempty"`
}

// Job is a leaf unit of work inside a stage.
type Job struct {
	PipelineActionID int64      `json:"pipeline_action_id,omitempty" yaml:"-"`
	PipelineStageID  int64      `json:"pipeline_stage_id,omitempty" yaml:"-"`
	Enabled          bool       `json:"enabled" yaml:"enabled"`
	Action           Action     `json:"action" yaml:"action"`
	LastModified     *time.Time `json:"last_modified,omitempty" yaml:"-"`
}

// Action is the body of a job.
type Action struct {
	ID           int64         `json:"id,omitempty" yaml:"-"`
	Name         string        `json:"name" yaml:"name"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	Requirements []Requirement `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Steps        []Step        `json:"actions,omitempty" yaml:"steps,omitempty"`
}

// Requirement constrains where a job can run.
type Requirement struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// Step is one action invocation inside a job.
type Step struct {
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Script  string `json:"script,omitempty" yaml:"script,omitempty"`
}

// Parameter types understood by the backend.
const (
	ParameterTypeString   = "string"
	ParameterTypeText     = "text"
	ParameterTypeBoolean  = "boolean"
	ParameterTypeNumber   = "number"
	ParameterTypeList     = "list"
	ParameterTypePipeline = "pipeline"
)

// Parameter is a named pipeline input.
type Parameter struct {
	ID          int64  `json:"id,omitempty" yaml:"-"`
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Advanced    bool   `json:"advanced,omitempty" yaml:"advanced,omitempty"`
}

// Audit is a historical snapshot of a pipeline. Its ID is the rollback target.
type Audit struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username,omitempty"`
	Action    string    `json:"action,omitempty"`
	Versioned time.Time `json:"versionned"`
	Pipeline  *Pipeline `json:"pipeline,omitempty"`
}

// Application is a project application that may use a pipeline.
type Application struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name"`
	ProjectKey string `json:"project_key,omitempty"`
}

// Workflow is a project workflow that may reference a pipeline.
type Workflow struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name"`
	ProjectKey string `json:"project_key,omitempty"`
}

// Environment is a project environment that may be attached to a pipeline.
type Environment struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name"`
	ProjectKey string `json:"project_key,omitempty"`
}
