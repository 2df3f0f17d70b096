package http

import "net/http"

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	cat, err := s.svc.Categories.CreateCategory(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, toCategoryResponse(*cat))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	cat, err := s.svc.Categories.RenameCategory(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, toCategoryResponse(*cat))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusNoContent, nil)
}
