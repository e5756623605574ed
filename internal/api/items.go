package api

import (
	"net/http"

	"mta/internal/models"
)

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Items.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	item, err := s.services.Items.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item models.Item
	if err := decodeJSON(w, r, &item); err != nil {
		writeServiceError(w, r, err)
		return
	}
	item.ID = 0
	if err := s.services.Items.CreateItem(r.Context(), &item); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var item models.Item
	if err := decodeJSON(w, r, &item); err != nil {
		writeServiceError(w, r, err)
		return
	}
	item.ID = id
	if err := s.services.Items.UpdateItem(r.Context(), &item); err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := s.services.Items.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.services.Items.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
