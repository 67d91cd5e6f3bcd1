package cds

import (
	"context"

	"github.com/abdesslem/cds/internal/domain"
)

func (c *Client) pipeline(ctx context.Context, req *Request, err error) (*domain.Pipeline, error) {
	if err != nil {
		return nil, err
	}
	var pip domain.Pipeline
	if err := c.Do(ctx, req, &pip); err != nil {
		return nil, err
	}
	return &pip, nil
}

func (c *Client) text(ctx context.Context, req *Request, err error) (string, error) {
	if err != nil {
		return "", err
	}
	var s string
	if err := c.Do(ctx, req, &s); err != nil {
		return "", err
	}
	return s, nil
}

// ListPipelines returns the pipelines of a project.
func (c *Client) ListPipelines(ctx context.Context, key string) ([]domain.Pipeline, error) {
	req, err := BuildListPipelines(key)
	if err != nil {
		return nil, err
	}
	var pips []domain.Pipeline
	if err := c.Do(ctx, req, &pips); err != nil {
		return nil, err
	}
	return pips, nil
}

// GetPipeline returns a pipeline with its usage filled in.
func (c *Client) GetPipeline(ctx context.Context, key, name string) (*domain.Pipeline, error) {
	req, err := BuildGetPipeline(key, name)
	return c.pipeline(ctx, req, err)
}

// CreatePipeline creates pip and returns the stored pipeline.
func (c *Client) CreatePipeline(ctx context.Context, key string, pip domain.Pipeline) (*domain.Pipeline, error) {
	req, err := BuildCreatePipeline(key, pip)
	return c.pipeline(ctx, req, err)
}

// UpdatePipeline replaces the pipeline named oldName with pip.
func (c *Client) UpdatePipeline(ctx context.Context, key, oldName string, pip domain.Pipeline) (*domain.Pipeline, error) {
	req, err := BuildUpdatePipeline(key, oldName, pip)
	return c.pipeline(ctx, req, err)
}

// DeletePipeline deletes a pipeline. It returns true on any 2xx answer,
// whatever the body.
func (c *Client) DeletePipeline(ctx context.Context, key, name string) (bool, error) {
	req, err := BuildDeletePipeline(key, name)
	if err != nil {
		return false, err
	}
	if err := c.Do(ctx, req, nil); err != nil {
		return false, err
	}
	return true, nil
}

// CreateFromImport creates a pipeline from YAML source. It returns the
// backend's import messages.
func (c *Client) CreateFromImport(ctx context.Context, key, code string, opts ImportOptions) ([]string, error) {
	req, err := BuildCreateFromImport(key, code, opts)
	if err != nil {
		return nil, err
	}
	return c.importMessages(ctx, req)
}

// ReplaceFromImport replaces the named pipeline with YAML source.
func (c *Client) ReplaceFromImport(ctx context.Context, key, name, code string, opts ImportOptions) ([]string, error) {
	req, err := BuildReplaceFromImport(key, name, code, opts)
	if err != nil {
		return nil, err
	}
	return c.importMessages(ctx, req)
}

func (c *Client) importMessages(ctx context.Context, req *Request) ([]string, error) {
	var msgs []string
	if err := c.Do(ctx, req, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// PreviewPipeline parses YAML source into the pipeline it would produce.
func (c *Client) PreviewPipeline(ctx context.Context, key, code string) (*domain.Pipeline, error) {
	req, err := BuildPreviewPipeline(key, code)
	return c.pipeline(ctx, req, err)
}

// ExportPipeline returns the YAML definition of a pipeline, verbatim.
func (c *Client) ExportPipeline(ctx context.Context, key, name string) (string, error) {
	req, err := BuildExportPipeline(key, name)
	return c.text(ctx, req, err)
}

// PullPipeline returns the YAML definition as pulled for the repository view.
func (c *Client) PullPipeline(ctx context.Context, key, name string) (string, error) {
	req, err := BuildPullPipeline(key, name)
	return c.text(ctx, req, err)
}

// RollbackPipeline restores a pipeline to an audit revision.
func (c *Client) RollbackPipeline(ctx context.Context, key, name string, auditID int64) (*domain.Pipeline, error) {
	req, err := BuildRollbackPipeline(key, name, auditID)
	return c.pipeline(ctx, req, err)
}

// ListAudits returns the revisions of a pipeline.
func (c *Client) ListAudits(ctx context.Context, key, name string) ([]domain.Audit, error) {
	req, err := BuildListAudits(key, name)
	if err != nil {
		return nil, err
	}
	var audits []domain.Audit
	if err := c.Do(ctx, req, &audits); err != nil {
		return nil, err
	}
	return audits, nil
}

// ListApplications returns the applications consuming a pipeline.
func (c *Client) ListApplications(ctx context.Context, key, name string) ([]domain.Application, error) {
	req, err := BuildListApplications(key, name)
	if err != nil {
		return nil, err
	}
	var apps []domain.Application
	if err := c.Do(ctx, req, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// InsertStage appends a stage and returns the updated pipeline.
func (c *Client) InsertStage(ctx context.Context, key, pipName string, stage domain.Stage) (*domain.Pipeline, error) {
	req, err := BuildInsertStage(key, pipName, stage)
	return c.pipeline(ctx, req, err)
}

// UpdateStage updates a stage and returns the updated pipeline.
func (c *Client) UpdateStage(ctx context.Context, key, pipName string, stage domain.Stage) (*domain.Pipeline, error) {
	req, err := BuildUpdateStage(key, pipName, stage)
	return c.pipeline(ctx, req, err)
}

// DeleteStage removes a stage and returns the updated pipeline.
func (c *Client) DeleteStage(ctx context.Context, key, pipName string, stageID int64) (*domain.Pipeline, error) {
	req, err := BuildDeleteStage(key, pipName, stageID)
	return c.pipeline(ctx, req, err)
}

// MoveStage reorders a stage and returns the updated pipeline.
func (c *Client) MoveStage(ctx context.Context, key, pipName string, stage domain.Stage) (*domain.Pipeline, error) {
	req, err := BuildMoveStage(key, pipName, stage)
	return c.pipeline(ctx, req, err)
}

// AddJob adds a job to a stage and returns the updated pipeline.
func (c *Client) AddJob(ctx context.Context, key, pipName string, stageID int64, job domain.Job) (*domain.Pipeline, error) {
	req, err := BuildAddJob(key, pipName, stageID, job)
	return c.pipeline(ctx, req, err)
}

// UpdateJob updates a job and returns the updated pipeline.
func (c *Client) UpdateJob(ctx context.Context, key, pipName string, stageID int64, job domain.Job) (*domain.Pipeline, error) {
	req, err := BuildUpdateJob(key, pipName, stageID, job)
	return c.pipeline(ctx, req, err)
}

// DeleteJob removes a job and returns the updated pipeline.
func (c *Client) DeleteJob(ctx context.Context, key, pipName string, stageID, actionID int64) (*domain.Pipeline, error) {
	req, err := BuildDeleteJob(key, pipName, stageID, actionID)
	return c.pipeline(ctx, req, err)
}

// AddParameter adds a parameter and returns the updated pipeline.
func (c *Client) AddParameter(ctx context.Context, key, pipName string, param domain.Parameter) (*domain.Pipeline, error) {
	req, err := BuildAddParameter(key, pipName, param)
	return c.pipeline(ctx, req, err)
}

// UpdateParameter updates or renames a parameter and returns the updated pipeline.
func (c *Client) UpdateParameter(ctx context.Context, key, pipName string, change ParameterChange) (*domain.Pipeline, error) {
	req, err := BuildUpdateParameter(key, pipName, change)
	return c.pipeline(ctx, req, err)
}

// DeleteParameter removes a parameter and returns the updated pipeline.
func (c *Client) DeleteParameter(ctx context.Context, key, pipName, name string) (*domain.Pipeline, error) {
	req, err := BuildDeleteParameter(key, pipName, name)
	return c.pipeline(ctx, req, err)
}
