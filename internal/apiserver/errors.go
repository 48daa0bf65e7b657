package apiserver

import (
	"fmt"
	"net/http"
)

// handleMethodNotAllowed answers requests using an unsupported method.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		fmt.Sprintf("method %s not allowed, use %s", r.Method, allowed))
}
