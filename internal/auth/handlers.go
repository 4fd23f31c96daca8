package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"intersect-backend/internal/models"
	"intersect-backend/internal/resolve"
	"intersect-backend/internal/storage"
)

type Handler struct {
	identity *resolve.IdentityResolver
	store    *storage.Storage
}

func NewHandler(identity *resolve.IdentityResolver, store *storage.Storage) *Handler {
	return &Handler{identity: identity, store: store}
}

// SignIn establishes a session from a provider profile
// @Summary Sign in with a provider profile
// @Description Creates or refreshes the user record for the provider identity and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param profile body models.ProviderProfile true "Provider profile"
// @Success 200 {object} map[string]interface{} "Session token and user"
// @Failure 400 {string} string "Invalid request body"
// @Failure 422 {object} map[string]interface{} "Profile has no email"
// @Router /v1/auth/signin [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var profile models.ProviderProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.identity.Resolve(r.Context(), profile)
	if err != nil {
		if errors.Is(err, resolve.ErrMissingEmail) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"error": "email is required to sign in",
				"kind":  "validation",
			})
			return
		}
		http.Error(w, "Failed to resolve identity", http.StatusInternalServerError)
		return
	}

	token, err := GenerateToken(user.GitHubID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user":  user,
	})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Description Returns the user record the session resolves to
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "User data"
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "User not found"
// @Security BearerAuth
// @Router /v1/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	githubID, ok := GitHubIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetUser(r.Context(), githubID)
	if err != nil {
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user": user})
}
