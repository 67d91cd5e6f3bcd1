package mockapi

import (
	"net/http"
	"slices"

	"github.com/abdesslem/cds/internal/domain"
)

func stageIndex(pip *domain.Pipeline, id int64) (int, error) {
	for i := range pip.Stages {
		if pip.Stages[i].ID == id {
			return i, nil
		}
	}
	return -1, errorf(http.StatusNotFound, "stage %d does not exist", id)
}

func jobIndex(st *domain.Stage, actionID int64) (int, error) {
	for i := range st.Jobs {
		if st.Jobs[i].PipelineActionID == actionID {
			return i, nil
		}
	}
	return -1, errorf(http.StatusNotFound, "job %d does not exist", actionID)
}

func parameterIndex(pip *domain.Pipeline, name string) int {
	return slices.IndexFunc(pip.Parameters, func(p domain.Parameter) bool { return p.Name == name })
}

// InsertStage appends a stage.
func (s *Store) InsertStage(key, name string, stage domain.Stage) (*domain.Pipeline, error) {
	return s.mutate(key, name, "addStage", func(_ *project, cur *domain.Pipeline) error {
		if stage.Name == "" {
			return errorf(http.StatusBadRequest, "invalid stage name")
		}
		stage.ID = 0
		cur.Stages = append(cur.Stages, stage)
		s.assignIDs(cur)
		return nil
	})
}

// UpdateStage replaces a stage's name, conditions and enabled flag. Jobs and
// position are left alone.
func (s *Store) UpdateStage(key, name string, stageID int64, stage domain.Stage) (*domain.Pipeline, error) {
	return s.mutate(key, name, "updateStage", func(_ *project, cur *domain.Pipeline) error {
		i, err := stageIndex(cur, stageID)
		if err != nil {
			return err
		}
		st := &cur.Stages[i]
		st.Name = stage.Name
		st.Enabled = stage.Enabled
		st.Conditions = stage.Conditions
		return nil
	})
}

// DeleteStage removes a stage and its jobs.
func (s *Store) DeleteStage(key, name string, stageID int64) (*domain.Pipeline, error) {
	return s.mutate(key, name, "deleteStage", func(_ *project, cur *domain.Pipeline) error {
		i, err := stageIndex(cur, stageID)
		if err != nil {
			return err
		}
		cur.Stages = slices.Delete(cur.Stages, i, i+1)
		s.assignIDs(cur)
		return nil
	})
}

// MoveStage moves stage.ID so that it ends at position stage.BuildOrder.
func (s *Store) MoveStage(key, name string, stage domain.Stage) (*domain.Pipeline, error) {
	return s.mutate(key, name, "moveStage", func(_ *project, cur *domain.Pipeline) error {
		i, err := stageIndex(cur, stage.ID)
		if err != nil {
			return err
		}
		if stage.BuildOrder < 1 || stage.BuildOrder > len(cur.Stages) {
			return errorf(http.StatusBadRequest, "invalid build order %d", stage.BuildOrder)
		}
		moved := cur.Stages[i]
		cur.Stages = slices.Delete(cur.Stages, i, i+1)
		cur.Stages = slices.Insert(cur.Stages, stage.BuildOrder-1, moved)
		s.assignIDs(cur)
		return nil
	})
}

// AddJob appends a job to a stage.
func (s *Store) AddJob(key, name string, stageID int64, job domain.Job) (*domain.Pipeline, error) {
	return s.mutate(key, name, "addJob", func(_ *project, cur *domain.Pipeline) error {
		i, err := stageIndex(cur, stageID)
		if err != nil {
			return err
		}
		if job.Action.Name == "" {
			return errorf(http.StatusBadRequest, "invalid job name")
		}
		job.PipelineActionID = 0
		cur.Stages[i].Jobs = append(cur.Stages[i].Jobs, job)
		s.assignIDs(cur)
		return nil
	})
}

// UpdateJob replaces a job in place.
func (s *Store) UpdateJob(key, name string, stageID, actionID int64, job domain.Job) (*domain.Pipeline, error) {
	return s.mutate(key, name, "updateJob", func(_ *project, cur *domain.Pipeline) error {
		i, err := stageIndex(cur, stageID)
		if err != nil {
			return err
		}
		j, err := jobIndex(&cur.Stages[i], actionID)
		if err != nil {
			return err
		}
		job.PipelineActionID = actionID
		job.PipelineStageID = stageID
		cur.Stages[i].Jobs[j] = job
		return nil
	})
}

// DeleteJob removes a job from a stage.
func (s *Store) DeleteJob(key, name string, stageID, actionID int64) (*domain.Pipeline, error) {
	return s.mutate(key, name, "deleteJob", func(_ *project, cur *domain.Pipeline) error {
		i, err := stageIndex(cur, stageID)
		if err != nil {
			return err
		}
		j, err := jobIndex(&cur.Stages[i], actionID)
		if err != nil {
			return err
		}
		cur.Stages[i].Jobs = slices.Delete(cur.Stages[i].Jobs, j, j+1)
		return nil
	})
}

// AddParameter adds the parameter paramName. The body name must agree.
func (s *Store) AddParameter(key, name, paramName string, param domain.Parameter) (*domain.Pipeline, error) {
	return s.mutate(key, name, "addParameter", func(_ *project, cur *domain.Pipeline) error {
		if param.Name != paramName {
			return errorf(http.StatusBadRequest, "parameter name %s does not match %s", param.Name, paramName)
		}
		if parameterIndex(cur, paramName) >= 0 {
			return errorf(http.StatusConflict, "parameter %s already exists", paramName)
		}
		param.ID = 0
		cur.Parameters = append(cur.Parameters, param)
		s.assignIDs(cur)
		return nil
	})
}

// UpdateParameter replaces the parameter currently named paramName; the body
// may carry a new name.
func (s *Store) UpdateParameter(key, name, paramName string, param domain.Parameter) (*domain.Pipeline, error) {
	return s.mutate(key, name, "updateParameter", func(_ *project, cur *domain.Pipeline) error {
		i := parameterIndex(cur, paramName)
		if i < 0 {
			return errorf(http.StatusNotFound, "parameter %s does not exist", paramName)
		}
		if param.Name != paramName && parameterIndex(cur, param.Name) >= 0 {
			return errorf(http.StatusConflict, "parameter %s already exists", param.Name)
		}
		param.ID = cur.Parameters[i].ID
		cur.Parameters[i] = param
		return nil
	})
}

// DeleteParameter removes a parameter.
func (s *Store) DeleteParameter(key, name, paramName string) (*domain.Pipeline, error) {
	return s.mutate(key, name, "deleteParameter", func(_ *project, cur *domain.Pipeline) error {
		i := parameterIndex(cur, paramName)
		if i < 0 {
			return errorf(http.StatusNotFound, "parameter %s does not exist", paramName)
		}
		cur.Parameters = slices.Delete(cur.Parameters, i, i+1)
		return nil
	})
}
