package mockapi

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/abdesslem/cds/internal/domain"
)

// statusError is a failure the handlers turn into an HTTP status.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func errorf(code int, format string, args ...any) error {
	return &statusError{code: code, msg: fmt.Sprintf(format, args...)}
}

type pipelineState struct {
	pip    domain.Pipeline
	audits []domain.Audit
}

type project struct {
	key          string
	pipelines    map[string]*pipelineState
	applications map[string][]string // application name -> pipeline names
	workflows    map[string][]string
	environments []string
}

// Store is an in-memory pipeline backend.
type Store struct {
	mu       sync.Mutex
	projects map[string]*project
	nextID   int64
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		projects: make(map[string]*project),
		now:      time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddProject registers a project key.
func (s *Store) AddProject(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[key]; ok {
		return
	}
	s.projects[key] = &project{
		key:          key,
		pipelines:    make(map[string]*pipelineState),
		applications: make(map[string][]string),
		workflows:    make(map[string][]string),
	}
}

// AddApplication registers an application of key that uses the given pipelines.
func (s *Store) AddApplication(key, name string, pipelines ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(key)
	if err != nil {
		return err
	}
	p.applications[name] = append(p.applications[name], pipelines...)
	return nil
}

// AddWorkflow registers a workflow of key that references the given pipelines.
func (s *Store) AddWorkflow(key, name string, pipelines ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(key)
	if err != nil {
		return err
	}
	p.workflows[name] = append(p.workflows[name], pipelines...)
	return nil
}

// AddEnvironment registers an environment of key.
func (s *Store) AddEnvironment(key, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(key)
	if err != nil {
		return err
	}
	p.environments = append(p.environments, name)
	return nil
}

func (s *Store) project(key string) (*project, error) {
	p, ok := s.projects[key]
	if !ok {
		return nil, errorf(http.StatusNotFound, "project %s does not exist", key)
	}
	return p, nil
}

func (s *Store) state(key, name string) (*project, *pipelineState, error) {
	p, err := s.project(key)
	if err != nil {
		return nil, nil, err
	}
	st, ok := p.pipelines[name]
	if !ok {
		return nil, nil, errorf(http.StatusNotFound, "pipeline %s does not exist", name)
	}
	return p, st, nil
}

// ListPipelines returns the pipelines of key sorted by name.
func (s *Store) ListPipelines(key string) ([]domain.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(key)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Pipeline, 0, len(p.pipelines))
	for _, st := range p.pipelines {
		out = append(out, clonePipeline(st.pip))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetPipeline returns a pipeline, with its usage when withUsage is set.
func (s *Store) GetPipeline(key, name string, withUsage bool) (*domain.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, st, err := s.state(key, name)
	if err != nil {
		return nil, err
	}
	pip := clonePipeline(st.pip)
	if withUsage {
		pip.Usage = p.usage(name)
	}
	return &pip, nil
}

func (p *project) usage(name string) *domain.Usage {
	u := &domain.Usage{}
	for app, pips := range p.applications {
		if slices.Contains(pips, name) {
			u.Applications = append(u.Applications, domain.Application{Name: app, ProjectKey: p.key})
		}
	}
	for wf, pips := range p.workflows {
		if slices.Contains(pips, name) {
			u.Workflows = append(u.Workflows, domain.Workflow{Name: wf, ProjectKey: p.key})
		}
	}
	for _, env := range p.environments {
		u.Environments = append(u.Environments, domain.Environment{Name: env, ProjectKey: p.key})
	}
	sort.Slice(u.Applications, func(i, j int) bool { return u.Applications[i].Name < u.Applications[j].Name })
	sort.Slice(u.Workflows, func(i, j int) bool { return u.Workflows[i].Name < u.Workflows[j].Name })
	return u
}

// ListApplications returns the applications using a pipeline.
func (s *Store) ListApplications(key, name string) ([]domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, err := s.state(key, name)
	if err != nil {
		return nil, err
	}
	apps := p.usage(name).Applications
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

// CreatePipeline stores a new pipeline.
func (s *Store) CreatePipeline(key string, pip domain.Pipeline) (*domain.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createLocked(key, pip)
}

func (s *Store) createLocked(key string, pip domain.Pipeline) (*domain.Pipeline, error) {
	p, err := s.project(key)
	if err != nil {
		return nil, err
	}
	if pip.Name == "" {
		return nil, errorf(http.StatusBadRequest, "invalid pipeline name")
	}
	if _, exists := p.pipelines[pip.Name]; exists {
		return nil, errorf(http.StatusConflict, "pipeline %s already exists", pip.Name)
	}

	pip.ID = s.id()
	pip.ProjectKey = key
	s.assignIDs(&pip)
	s.touch(&pip)
	p.pipelines[pip.Name] = &pipelineState{pip: pip}

	out := clonePipeline(pip)
	return &out, nil
}

// UpdatePipeline replaces the pipeline named oldName. Renaming is allowed.
// Stages and parameters are preserved when the update omits them.
func (s *Store) UpdatePipeline(key, oldName string, pip domain.Pipeline) (*domain.Pipeline, error) {
	return s.mutate(key, oldName, "updatePipeline", func(p *project, cur *domain.Pipeline) error {
		if pip.Name == "" {
			return errorf(http.StatusBadRequest, "invalid pipeline name")
		}
		if pip.Name != oldName {
			if _, exists := p.pipelines[pip.Name]; exists {
				return errorf(http.StatusConflict, "pipeline %s already exists", pip.Name)
			}
		}
		cur.Name = pip.Name
		cur.Description = pip.Description
		if pip.Stages != nil {
			cur.Stages = pip.Stages
		}
		if pip.Parameters != nil {
			cur.Parameters = pip.Parameters
		}
		s.assignIDs(cur)
		return nil
	})
}

// DeletePipeline removes a pipeline. It refuses while applications use it.
func (s *Store) DeletePipeline(key, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, err := s.state(key, name)
	if err != nil {
		return err
	}
	if apps := p.usage(name).Applications; len(apps) > 0 {
		return errorf(http.StatusConflict, "pipeline %s is used by %d application(s)", name, len(apps))
	}
	delete(p.pipelines, name)
	return nil
}

// ImportPipeline creates or replaces a pipeline from a parsed definition.
// target is empty for a creation. force allows a creation to overwrite.
func (s *Store) ImportPipeline(key, target string, pip domain.Pipeline, force bool) ([]string, error) {
	if pip.Name == "" {
		pip.Name = target
	}
	if target != "" && pip.Name != target {
		return nil, errorf(http.StatusBadRequest, "pipeline name %s does not match %s", pip.Name, target)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.project(key)
	if err != nil {
		return nil, err
	}
	_, exists := p.pipelines[pip.Name]

	switch {
	case !exists && target != "":
		return nil, errorf(http.StatusNotFound, "pipeline %s does not exist", target)
	case !exists:
		if _, err := s.createLocked(key, pip); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Pipeline %s has been created", pip.Name)}, nil
	case target == "" && !force:
		return nil, errorf(http.StatusConflict, "pipeline %s already exists", pip.Name)
	}

	if _, err := s.mutateLocked(key, pip.Name, "importPipeline", func(_ *project, cur *domain.Pipeline) error {
		cur.Description = pip.Description
		cur.Stages = pip.Stages
		cur.Parameters = pip.Parameters
		s.assignIDs(cur)
		return nil
	}); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("Pipeline %s has been updated", pip.Name)}, nil
}

// ListAudits returns the revisions of a pipeline, newest first.
func (s *Store) ListAudits(key, name string) ([]domain.Audit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, st, err := s.state(key, name)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Audit, len(st.audits))
	for i, a := range st.audits {
		if a.Pipeline != nil {
			snapshot := clonePipeline(*a.Pipeline)
			a.Pipeline = &snapshot
		}
		out[len(out)-1-i] = a
	}
	return out, nil
}

// Rollback restores the snapshot of auditID. The rollback itself is audited.
func (s *Store) Rollback(key, name string, auditID int64) (*domain.Pipeline, error) {
	return s.mutate(key, name, "rollback", func(p *project, cur *domain.Pipeline) error {
		st := p.pipelines[name]
		for _, a := range st.audits {
			if a.ID != auditID {
				continue
			}
			snapshot := clonePipeline(*a.Pipeline)
			if snapshot.Name != name {
				if _, exists := p.pipelines[snapshot.Name]; exists {
					return errorf(http.StatusConflict, "pipeline %s already exists", snapshot.Name)
				}
			}
			*cur = snapshot
			return nil
		}
		return errorf(http.StatusNotFound, "audit %d does not exist", auditID)
	})
}

// mutate snapshots the pipeline into its audit trail, applies fn, and
// re-indexes the pipeline when fn renamed it.
func (s *Store) mutate(key, name, action string, fn func(p *project, cur *domain.Pipeline) error) (*domain.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateLocked(key, name, action, fn)
}

func (s *Store) mutateLocked(key, name, action string, fn func(p *project, cur *domain.Pipeline) error) (*domain.Pipeline, error) {
	p, st, err := s.state(key, name)
	if err != nil {
		return nil, err
	}

	before := clonePipeline(st.pip)
	next := clonePipeline(st.pip)
	if err := fn(p, &next); err != nil {
		return nil, err
	}
	next.ID = before.ID
	next.ProjectKey = key
	s.touch(&next)

	st.audits = append(st.audits, domain.Audit{
		ID:        s.id(),
		Username:  "mock",
		Action:    action,
		Versioned: s.now().UTC(),
		Pipeline:  &before,
	})
	st.pip = next
	if next.Name != name {
		delete(p.pipelines, name)
		p.pipelines[next.Name] = st
	}

	out := clonePipeline(next)
	return &out, nil
}

func (s *Store) touch(pip *domain.Pipeline) {
	now := s.now().UTC()
	pip.LastModified = &now
}

// assignIDs numbers stages, jobs and parameters that have none yet and
// renumbers build orders from the stage positions.
func (s *Store) assignIDs(pip *domain.Pipeline) {
	for i := range pip.Stages {
		st := &pip.Stages[i]
		if st.ID == 0 {
			st.ID = s.id()
		}
		st.PipelineID = pip.ID
		st.BuildOrder = i + 1
		for j := range st.Jobs {
			job := &st.Jobs[j]
			if job.PipelineActionID == 0 {
				job.PipelineActionID = s.id()
			}
			job.PipelineStageID = st.ID
		}
	}
	for i := range pip.Parameters {
		if pip.Parameters[i].ID == 0 {
			pip.Parameters[i].ID = s.id()
		}
	}
}

func clonePipeline(p domain.Pipeline) domain.Pipeline {
	out := p
	if p.Stages != nil {
		out.Stages = make([]domain.Stage, len(p.Stages))
		for i, st := range p.Stages {
			out.Stages[i] = cloneStage(st)
		}
	}
	out.Parameters = slices.Clone(p.Parameters)
	if p.LastModified != nil {
		t := *p.LastModified
		out.LastModified = &t
	}
	out.Usage = nil
	return out
}

func cloneStage(st domain.Stage) domain.Stage {
	out := st
	out.Conditions = maps.Clone(st.Conditions)
	if st.Jobs != nil {
		out.Jobs = make([]domain.Job, len(st.Jobs))
		for i, job := range st.Jobs {
			job.Action.Requirements = slices.Clone(job.Action.Requirements)
			job.Action.Steps = slices.Clone(job.Action.Steps)
			if job.LastModified != nil {
				t := *job.LastModified
				job.LastModified = &t
			}
			out.Jobs[i] = job
		}
	}
	return out
}
