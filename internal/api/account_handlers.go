package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/Ishan-Karpe/ShelfSense/internal/http/response"
)

// UpdateAccountRequest is the request body for account updates.
type UpdateAccountRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	UserName string `json:"userName" validate:"required,min=1,max=100"`
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())

	var req UpdateAccountRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.admin.UpdateUserEmail(r.Context(), identity.UserID, req.Email); err != nil {
		s.logger.Error("auth email update failed", "user_id", identity.UserID, "error", err)
		response.InternalError(w, "Failed to update user", s.logger)
		return
	}

	if err := s.admin.UpdateProfileName(r.Context(), identity.UserID, req.UserName); err != nil {
		s.logger.Error("profile name update failed", "user_id", identity.UserID, "error", err)
		response.InternalError(w, "Failed to update profile", s.logger)
		return
	}

	response.Success(w, map[string]string{"message": "User updated successfully"}, s.logger)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity := getIdentity(r.Context())
	userID := identity.UserID

	// Row deletion is best effort: a failure here must not strand the
	// auth user, so log and carry on.
	if err := s.admin.DeleteBooksForUser(r.Context(), userID); err != nil {
		s.logger.Error("book rows deletion failed", "user_id", userID, "error", err)
	}
	if err := s.admin.DeleteProfile(r.Context(), userID); err != nil {
		s.logger.Error("profile row deletion failed", "user_id", userID, "error", err)
	}

	if err := s.admin.DeleteUser(r.Context(), userID); err != nil {
		s.logger.Error("auth user deletion failed", "user_id", userID, "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"message": "User deleted successfully"}, s.logger)
}
