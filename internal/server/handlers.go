package server

import (
	"io"
	"net/http"

	"github.com/uschtwill/trackd/internal/service"
)

// maxBodyBytes bounds request bodies; descriptions and comments max out
// at 64 KiB, so 1 MiB leaves generous headroom.
const maxBodyBytes = 1 << 20

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, s.log, err)
		return nil, false
	}
	return body, true
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	issue, err := s.svc.CreateIssue(r.Context(), s.session(r), body)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.ListIssues(r.Context(), service.ListQuery{
		Status:  q.Get("status"),
		OrderBy: q.Get("orderBy"),
		Page:    q.Get("page"),
	})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	details, err := s.svc.GetIssue(r.Context(), pathID(r))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handlePatchIssue(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	issue, err := s.svc.PatchIssue(r.Context(), s.session(r), pathID(r), body)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteIssue(r.Context(), s.session(r), pathID(r)); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	comment, err := s.svc.CreateComment(r.Context(), s.session(r), pathID(r), body)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.svc.ListComments(r.Context(), pathID(r))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	label, err := s.svc.CreateLabel(r.Context(), s.session(r), body)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, label)
}

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.svc.ListLabels(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
