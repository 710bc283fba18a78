package handler

import "net/http"

// SearchPlaces handles GET /places?query=&page=&size=.
// page defaults to 1 and size to 15.
func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	var (
		query      *string
		page, size *int
	)
	if !queryParam(w, r, "query", &query) || !queryParam(w, r, "page", &page) || !queryParam(w, r, "size", &size) {
		return
	}
	p, n := 1, 15
	if page != nil {
		p = *page
	}
	if size != nil {
		n = *size
	}

	result, err := s.places.Search(r.Context(), deref(query), p, n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
