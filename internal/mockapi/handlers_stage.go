package mockapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abdesslem/cds/internal/domain"
)

func (s *Server) handleInsertStage(w http.ResponseWriter, r *http.Request) {
	var stage domain.Stage
	if err := decodeJSON(r, &stage); err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.InsertStage(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), stage)
	s.respond(w, r, pip, err)
}

func (s *Server) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := pathID(r, "stageID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var stage domain.Stage
	if err := decodeJSON(r, &stage); err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.UpdateStage(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), stageID, stage)
	s.respond(w, r, pip, err)
}

func (s *Server) handleDeleteStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := pathID(r, "stageID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.DeleteStage(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), stageID)
	s.respond(w, r, pip, err)
}

func (s *Server) handleMoveStage(w http.ResponseWriter, r *http.Request) {
	var stage domain.Stage
	if err := decodeJSON(r, &stage); err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.MoveStage(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), stage)
	s.respond(w, r, pip, err)
}

func (s *Server) handleAddJob(w http.ResponseWriter, r *http.Request) {
	stageID, err := pathID(r, "stageID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var job domain.Job
	if err := decodeJSON(r, &job); err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.AddJob(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), stageID, job)
	s.respond(w, r, pip, err)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	stageID, err := pathID(r, "stageID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jobID, err := pathID(r, "jobID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var job domain.Job
	if err := decodeJSON(r, &job); err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.UpdateJob(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), stageID, jobID, job)
	s.respond(w, r, pip, err)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	stageID, err := pathID(r, "stageID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jobID, err := pathID(r, "jobID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.DeleteJob(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), stageID, jobID)
	s.respond(w, r, pip, err)
}

func (s *Server) handleAddParameter(w http.ResponseWriter, r *http.Request) {
	var param domain.Parameter
	if err := decodeJSON(r, &param); err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.AddParameter(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), chi.URLParam(r, "name"), param)
	s.respond(w, r, pip, err)
}

func (s *Server) handleUpdateParameter(w http.ResponseWriter, r *http.Request) {
	var param domain.Parameter
	if err := decodeJSON(r, &param); err != nil {
		s.writeError(w, r, err)
		return
	}
	pip, err := s.store.UpdateParameter(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), chi.URLParam(r, "name"), param)
	s.respond(w, r, pip, err)
}

func (s *Server) handleDeleteParameter(w http.ResponseWriter, r *http.Request) {
	pip, err := s.store.DeleteParameter(chi.URLParam(r, "key"), chi.URLParam(r, "pip"), chi.URLParam(r, "name"))
	s.respond(w, r, pip, err)
}
