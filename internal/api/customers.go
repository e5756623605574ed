package api

import (
	"net/http"
)

func (s *HTTPServer) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.services.Customers.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]customerDTO, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerDTO(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": out})
}

func (s *HTTPServer) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := s.services.Customers.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

func (s *HTTPServer) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body customerDTO
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := body.toCustomer(0)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.services.Customers.CreateCustomer(r.Context(), c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

func (s *HTTPServer) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var body customerDTO
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := body.toCustomer(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.services.Customers.UpdateCustomer(r.Context(), c); err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := s.services.Customers.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(updated))
}

func (s *HTTPServer) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.services.Customers.DeleteCustomer(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
