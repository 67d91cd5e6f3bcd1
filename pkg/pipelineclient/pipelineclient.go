// Package pipelineclient provides the public API for talking to a CDS
// pipeline service. This is the stable API for external consumers.
package pipelineclient

import (
	"github.com/abdesslem/cds/internal/api/cds"
	"github.com/abdesslem/cds/internal/domain"
)

// Client executes pipeline operations against a CDS API.
// See internal/api/cds.Client for full documentation.
type Client = cds.Client

// ClientOption is a functional option for configuring a Client.
type ClientOption = cds.ClientOption

// Request is the transport-independent description of one API call.
type Request = cds.Request

// ResponseKind tells how the body of a Request's answer is interpreted.
type ResponseKind = cds.ResponseKind

const (
	ResponseJSON    = cds.ResponseJSON
	ResponseText    = cds.ResponseText
	ResponseSuccess = cds.ResponseSuccess
)

// ImportOptions tunes a YAML import.
type ImportOptions = cds.ImportOptions

// ParameterChange is an in-place update or a rename of a parameter.
type ParameterChange = cds.ParameterChange

// NewClient creates a new Client with the given options.
// Example:
//
//	c := pipelineclient.NewClient(
//	    pipelineclient.WithBaseURL("https://cds.example.com/api"),
//	)
//	pip, err := c.GetPipeline(ctx, "PROJ", "build")
var NewClient = cds.NewClient

// NewHTTPClient returns a traced http.Client that does not follow redirects.
var NewHTTPClient = cds.NewHTTPClient

// Client options
var (
	WithBaseURL    = cds.WithBaseURL
	WithHTTPClient = cds.WithHTTPClient
	WithLogger     = cds.WithLogger
	WithUserAgent  = cds.WithUserAgent
)

// Parameter changes
var (
	ParameterUpdate = cds.ParameterUpdate
	ParameterRename = cds.ParameterRename
)

// Request builders. They validate their arguments and perform no I/O.
var (
	BuildListPipelines    = cds.BuildListPipelines
	BuildGetPipeline      = cds.BuildGetPipeline
	BuildCreatePipeline   = cds.BuildCreatePipeline
	BuildUpdatePipeline   = cds.BuildUpdatePipeline
	BuildDeletePipeline   = cds.BuildDeletePipeline
	BuildRollbackPipeline = cds.BuildRollbackPipeline
	BuildListAudits       = cds.BuildListAudits
	BuildListApplications = cds.BuildListApplications

	BuildCreateFromImport  = cds.BuildCreateFromImport
	BuildReplaceFromImport = cds.BuildReplaceFromImport
	BuildPreviewPipeline   = cds.BuildPreviewPipeline
	BuildExportPipeline    = cds.BuildExportPipeline
	BuildPullPipeline      = cds.BuildPullPipeline

	BuildInsertStage = cds.BuildInsertStage
	BuildUpdateStage = cds.BuildUpdateStage
	BuildDeleteStage = cds.BuildDeleteStage
	BuildMoveStage   = cds.BuildMoveStage
	BuildAddJob      = cds.BuildAddJob
	BuildUpdateJob   = cds.BuildUpdateJob
	BuildDeleteJob   = cds.BuildDeleteJob

	BuildAddParameter    = cds.BuildAddParameter
	BuildUpdateParameter = cds.BuildUpdateParameter
	BuildDeleteParameter = cds.BuildDeleteParameter
)

// Domain types
type (
	Pipeline    = domain.Pipeline
	Usage       = domain.Usage
	Stage       = domain.Stage
	Job         = domain.Job
	Action      = domain.Action
	Requirement = domain.Requirement
	Step        = domain.Step
	Parameter   = domain.Parameter
	Audit       = domain.Audit
	Application = domain.Application
	Workflow    = domain.Workflow
	Environment = domain.Environment
	APIError    = domain.APIError
)

// ErrInvalidArgument matches, via errors.Is, every error returned for a
// rejected argument before any request is sent.
var ErrInvalidArgument = domain.ErrInvalidArgument

// IsStatus reports whether err is an API answer with the given HTTP status.
var IsStatus = domain.IsStatus
