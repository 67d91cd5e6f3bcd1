package cds

import (
	"net/http"

	"github.com/abdesslem/cds/internal/domain"
)

// Stage and job mutations answer with the whole updated pipeline.

// BuildInsertStage appends stage to the pipeline.
func BuildInsertStage(key, pipName string, stage domain.Stage) (*Request, error) {
	p, err := PipelineOf(key, pipName)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodPost, p.Stages(), ResponseJSON).withJSON(stage)
}

// BuildUpdateStage updates the stage identified by stage.ID.
func BuildUpdateStage(key, pipName string, stage domain.Stage) (*Request, error) {
	s, err := stageAddress(key, pipName, stage.ID)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodPut, s.Path(), ResponseJSON).withJSON(stage)
}

// BuildDeleteStage removes the stage identified by stageID.
func BuildDeleteStage(key, pipName string, stageID int64) (*Request, error) {
	s, err := stageAddress(key, pipName, stageID)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodDelete, s.Path(), ResponseJSON), nil
}

// BuildMoveStage moves stage.ID to stage.BuildOrder.
func BuildMoveStage(key, pipName string, stage domain.Stage) (*Request, error) {
	p, err := PipelineOf(key, pipName)
	if err != nil {
		return nil, err
	}
	if err := validateID("stageID", stage.ID); err != nil {
		return nil, err
	}
	if stage.BuildOrder <= 0 {
		return nil, domain.ErrInvalidArgumentf("buildOrder", "must be positive, got %d", stage.BuildOrder)
	}
	return newRequest(http.MethodPost, p.Stages()+"/move", ResponseJSON).withJSON(stage)
}

// BuildAddJob adds job to the stage identified by stageID.
func BuildAddJob(key, pipName string, stageID int64, job domain.Job) (*Request, error) {
	s, err := stageAddress(key, pipName, stageID)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodPost, s.Jobs(), ResponseJSON).withJSON(job)
}

// BuildUpdateJob updates the job identified by job.PipelineActionID.
func BuildUpdateJob(key, pipName string, stageID int64, job domain.Job) (*Request, error) {
	j, err := jobAddress(key, pipName, stageID, job.PipelineActionID)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodPut, j.Path(), ResponseJSON).withJSON(job)
}

// BuildDeleteJob removes the job identified by actionID.
func BuildDeleteJob(key, pipName string, stageID, actionID int64) (*Request, error) {
	j, err := jobAddress(key, pipName, stageID, actionID)
	if err != nil {
		return nil, err
	}
	return newRequest(http.MethodDelete, j.Path(), ResponseJSON), nil
}

func stageAddress(key, pipName string, stageID int64) (StageAddress, error) {
	p, err := PipelineOf(key, pipName)
	if err != nil {
		return StageAddress{}, err
	}
	return p.Stage(stageID)
}

func jobAddress(key, pipName string, stageID, actionID int64) (JobAddress, error) {
	s, err := stageAddress(key, pipName, stageID)
	if err != nil {
		return JobAddress{}, err
	}
	return s.Job(actionID)
}
