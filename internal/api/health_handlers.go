package api

import (
	"net/http"

	"github.com/Ishan-Karpe/ShelfSense/internal/http/response"
)

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"status": "healthy"}, s.logger)
}
