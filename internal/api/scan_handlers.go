package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/Ishan-Karpe/ShelfSense/internal/http/response"
)

// ScanShelfRequest carries the base64-encoded JPEG of a bookshelf.
type ScanShelfRequest struct {
	Base64 string `json:"base64" validate:"required"`
}

func (s *Server) handleScanShelf(w http.ResponseWriter, r *http.Request) {
	var req ScanShelfRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	candidates, err := s.scanner.Scan(r.Context(), req.Base64)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{"bookArray": candidates}, s.logger)
}
