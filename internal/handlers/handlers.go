package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"intersect-backend/internal/aggregate"
	"intersect-backend/internal/auth"
	"intersect-backend/internal/cache"
	"intersect-backend/internal/events"
	"intersect-backend/internal/github"
	mw "intersect-backend/internal/middleware"
	"intersect-backend/internal/models"
	"intersect-backend/internal/resolve"
	"intersect-backend/internal/services"
	"intersect-backend/internal/storage"
)

type Handler struct {
	store   *storage.Storage
	auth    *auth.Handler
	orgs    *resolve.OrganizationResolver
	agg     *aggregate.Aggregator
	ai      *services.OpenRouterClient
	github  *github.Client
	reports *services.DevReportService
	cache   cache.Client
	events  *events.Publisher
}

func New(
	store *storage.Storage,
	authHandler *auth.Handler,
	orgs *resolve.OrganizationResolver,
	agg *aggregate.Aggregator,
	ai *services.OpenRouterClient,
	gh *github.Client,
	reports *services.DevReportService,
	cacheClient cache.Client,
	publisher *events.Publisher,
) *Handler {
	return &Handler{
		store:   store,
		auth:    authHandler,
		orgs:    orgs,
		agg:     agg,
		ai:      ai,
		github:  gh,
		reports: reports,
		cache:   cacheClient,
		events:  publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/swagger/*", httpSwagger.Handler())

	// Public surface, rate limited.
	r.With(mw.RateLimitSignIn(h.cache)).Post("/v1/auth/signin", h.auth.SignIn)
	r.With(mw.RateLimitApply(h.cache)).Post("/v1/applications", h.Apply)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/v1/auth/me", h.auth.Me)

		r.Post("/v1/organizations", h.CreateOrganization)
		r.Get("/v1/organizations/me", h.MyOrganization)
		r.Get("/v1/organizations/{id}/members", h.ListMembers)
		r.Get("/v1/organizations/{id}/key", h.JoinKeyPrefix)
		r.Post("/v1/organizations/{id}/key/rotate", h.RotateJoinKey)
		r.Get("/v1/organizations/{id}/github", h.GetGitHubURL)
		r.Post("/v1/organizations/{id}/github", h.SetGitHubURL)

		r.Get("/v1/applications", h.ListApplications)
		r.Post("/v1/applications/{id}/status", h.DecideApplication)

		r.Get("/v1/organizations/{id}/goals", h.ListGoals)
		r.Post("/v1/organizations/{id}/goals", h.CreateGoal)
		r.Get("/v1/organizations/{id}/progress-reports", h.ListProgressReports)
		r.Post("/v1/goals/{id}/progress", h.UpdateGoalProgress)
		r.Post("/v1/goals/{id}/report", h.GenerateProgressReport)

		r.Get("/v1/dashboard", h.Dashboard)
		r.Get("/v1/dev-report", h.DevReport)
		r.Get("/v1/commits", h.MyCommits)
		r.Get("/v1/pulls", h.MyPulls)
		r.Post("/v1/documentation", h.GenerateDocumentation)
		r.Get("/v1/codebase/analyze", h.AnalyzeCodebase)
	})
}

// Health reports liveness
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrganization creates an organization owned by the caller
// @Summary Create organization
// @Description Creates the organization, registers the owner as admin and returns the join key exactly once
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body models.CreateOrganizationInput true "Organization fields"
// @Success 201 {object} map[string]interface{} "Organization and join key"
// @Failure 422 {object} map[string]interface{} "Caller already belongs to an organization"
// @Security BearerAuth
// @Router /v1/organizations [post]
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	githubID, ok := auth.GitHubIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input models.CreateOrganizationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		validationError(w, "invalid request body")
		return
	}
	if input.Name == "" {
		validationError(w, "name is required")
		return
	}

	affiliated, err := h.store.HasOrganization(r.Context(), githubID)
	if err != nil {
		writeError(w, err)
		return
	}
	if affiliated {
		writeError(w, storage.ErrAlreadyAffiliated)
		return
	}

	org, key, err := h.store.CreateOrganization(r.Context(), githubID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	h.events.Publish(events.OrganizationCreated, org.ID, githubID, map[string]string{"name": org.Name})

	writeJSON(w, http.StatusCreated, map[string]any{
		"organization": org,
		"key":          key,
	})
}

// MyOrganization resolves the caller's organization and role
// @Summary Resolve caller's organization
// @Tags organizations
// @Produce json
// @Success 200 {object} models.Membership
// @Failure 404 {object} map[string]interface{} "No organization; onboarding required"
// @Security BearerAuth
// @Router /v1/organizations/me [get]
func (h *Handler) MyOrganization(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

// ListMembers lists the organization's members
// @Summary List members
// @Tags organizations
// @Produce json
// @Param id path string true "Organization id"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/organizations/{id}/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membershipForOrg(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.store.GetMembers(r.Context(), membership.Organization.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

// JoinKeyPrefix returns the join key's public prefix
// @Summary Join key prefix
// @Description The full key is only shown at creation or rotation; the prefix lets admins identify which key is live
// @Tags organizations
// @Produce json
// @Param id path string true "Organization id"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]interface{} "Admin only"
// @Security BearerAuth
// @Router /v1/organizations/{id}/key [get]
func (h *Handler) JoinKeyPrefix(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membershipForOrg(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !membership.Role.IsAdmin() {
		forbidden(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key_prefix": membership.Organization.KeyPrefix})
}

// RotateJoinKey replaces the organization's join key
// @Summary Rotate join key
// @Description Generates a new join key and returns it once; the old key stops working immediately
// @Tags organizations
// @Produce json
// @Param id path string true "Organization id"
// @Success 200 {object} map[string]string "New join key"
// @Failure 403 {object} map[string]interface{} "Admin only"
// @Security BearerAuth
// @Router /v1/organizations/{id}/key/rotate [post]
func (h *Handler) RotateJoinKey(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membershipForOrg(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !membership.Role.IsAdmin() {
		forbidden(w)
		return
	}

	key, err := h.store.RotateJoinKey(r.Context(), membership.Organization.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// GetGitHubURL returns the organization's repository URL
// @Summary Get repository URL
// @Tags organizations
// @Produce json
// @Param id path string true "Organization id"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /v1/organizations/{id}/github [get]
func (h *Handler) GetGitHubURL(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membershipForOrg(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"github_url": membership.Organization.GitHubURL})
}

// SetGitHubURL sets the organization's repository URL
// @Summary Set repository URL
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization id"
// @Param body body object true "github_url"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]interface{} "Admin only"
// @Security BearerAuth
// @Router /v1/organizations/{id}/github [post]
func (h *Handler) SetGitHubURL(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membershipForOrg(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !membership.Role.IsAdmin() {
		forbidden(w)
		return
	}

	var req struct {
		GitHubURL string `json:"github_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationError(w, "invalid request body")
		return
	}
	if _, _, err := github.SplitRepoURL(req.GitHubURL); err != nil {
		validationError(w, "github_url must be a repository URL")
		return
	}

	if err := h.store.SetGitHubURL(r.Context(), membership.Organization.ID, req.GitHubURL); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"github_url": req.GitHubURL})
}

// Apply submits a join request keyed by an organization secret key
// @Summary Apply to an organization
// @Description Validates the join key, creates the user when identity fields are complete and records a pending application
// @Tags applications
// @Accept json
// @Produce json
// @Param application body models.ApplyRequest true "Join key and identity"
// @Success 201 {object} map[string]interface{} "Pending application"
// @Failure 404 {object} map[string]interface{} "Unknown key"
// @Failure 422 {object} map[string]interface{} "Applicant already belongs to an organization"
// @Router /v1/applications [post]
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req models.ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationError(w, "invalid request body")
		return
	}
	if req.Key == "" || req.GitHubID == "" {
		validationError(w, "key and github_id are required")
		return
	}

	if !mw.ApplyKeyAllowed(h.cache, req.Key) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	org, err := h.store.GetOrganizationByKey(r.Context(), req.Key)
	if err != nil {
		writeError(w, err)
		return
	}

	affiliated, err := h.store.HasOrganization(r.Context(), req.GitHubID)
	if err != nil {
		writeError(w, err)
		return
	}
	if affiliated {
		writeError(w, storage.ErrAlreadyAffiliated)
		return
	}

	profile := models.ProviderProfile{
		GitHubID: req.GitHubID,
		Name:     req.Name,
		Email:    req.Email,
		Image:    req.Image,
	}

	// Applicants may apply before their first sign-in; record them when the
	// identity fields are complete.
	if req.Name != "" && req.Email != "" && req.Image != "" {
		if _, err := h.store.UpsertUser(r.Context(), profile); err != nil {
			writeError(w, err)
			return
		}
	}

	app, err := h.store.CreateApplication(r.Context(), org.ID, profile)
	if err != nil {
		writeError(w, err)
		return
	}

	h.events.Publish(events.ApplicationSubmitted, org.ID, req.GitHubID, map[string]string{"application_id": app.ID})

	writeJSON(w, http.StatusCreated, map[string]any{"application": app})
}

// ListApplications lists join requests for the caller's organization
// @Summary List applications
// @Tags applications
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Admin only"
// @Security BearerAuth
// @Router /v1/applications [get]
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !membership.Role.IsAdmin() {
		forbidden(w)
		return
	}

	apps, err := h.store.GetApplicationsByOrganization(r.Context(), membership.Organization.ID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

// DecideApplication approves or rejects a pending application
// @Summary Decide application
// @Description pending→approved requires a role from {developer, admin, product}; pending→rejected requires none. Both are terminal.
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Application id"
// @Param decision body models.ApplicationDecision true "Status and role"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Admin only"
// @Failure 422 {object} map[string]interface{} "Application is not pending"
// @Security BearerAuth
// @Router /v1/applications/{id}/status [post]
func (h *Handler) DecideApplication(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !membership.Role.IsAdmin() {
		forbidden(w)
		return
	}

	var decision models.ApplicationDecision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		validationError(w, "invalid request body")
		return
	}

	if !models.ValidTransition(models.ApplicationPending, decision.Status) {
		validationError(w, "status must be approved or rejected")
		return
	}
	if decision.Status == models.ApplicationApproved && !decision.Role.Assignable() {
		validationError(w, "a role from {developer, admin, product} is required to approve")
		return
	}
	if decision.Status == models.ApplicationRejected {
		decision.Role = models.RoleNone
	}

	app, err := h.store.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if app.OrganizationID != membership.Organization.ID {
		forbidden(w)
		return
	}

	updated, err := h.store.DecideApplication(r.Context(), app.ID, decision)
	if err != nil {
		writeError(w, err)
		return
	}

	eventType := events.ApplicationApproved
	if updated.Status == models.ApplicationRejected {
		eventType = events.ApplicationRejected
	}
	h.events.Publish(eventType, updated.OrganizationID, updated.GitHubID, map[string]string{
		"application_id": updated.ID,
		"role":           string(updated.Role),
	})

	writeJSON(w, http.StatusOK, map[string]any{"application": updated})
}

// ListGoals lists the organization's goals
// @Summary List goals
// @Tags goals
// @Produce json
// @Param id path string true "Organization id"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/organizations/{id}/goals [get]
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membershipForOrg(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	goals, err := h.store.GetGoalsByOrganization(r.Context(), membership.Organization.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

// CreateGoal creates a goal for the organization
// @Summary Create goal
// @Tags goals
// @Accept json
// @Produce json
// @Param id path string true "Organization id"
// @Param goal body models.CreateGoalInput true "Goal fields"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Admin or product role required"
// @Security BearerAuth
// @Router /v1/organizations/{id}/goals [post]
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membershipForOrg(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !membership.Role.CanManageGoals() {
		forbidden(w)
		return
	}

	var input models.CreateGoalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		validationError(w, "invalid request body")
		return
	}
	if input.Title == "" {
		validationError(w, "title is required")
		return
	}
	switch input.Priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		validationError(w, "priority must be low, medium or high")
		return
	}

	goal, err := h.store.CreateGoal(r.Context(), membership.Organization.ID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	githubID, _ := auth.GitHubIDFromContext(r.Context())
	h.events.Publish(events.GoalCreated, goal.OrganizationID, githubID, map[string]string{"goal_id": goal.ID})

	writeJSON(w, http.StatusCreated, map[string]any{"goal": goal})
}

// UpdateGoalProgress sets a goal's progress percentage
// @Summary Update goal progress
// @Tags goals
// @Accept json
// @Produce json
// @Param id path string true "Goal id"
// @Param body body object true "progress"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/goals/{id}/progress [post]
func (h *Handler) UpdateGoalProgress(w http.ResponseWriter, r *http.Request) {
	goal, membership, err := h.goalForCaller(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Progress int `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationError(w, "invalid request body")
		return
	}
	if req.Progress < 0 || req.Progress > 100 {
		validationError(w, "progress must be between 0 and 100")
		return
	}

	updated, err := h.store.UpdateGoalProgress(r.Context(), goal.ID, req.Progress)
	if err != nil {
		writeError(w, err)
		return
	}

	githubID, _ := auth.GitHubIDFromContext(r.Context())
	h.events.Publish(events.GoalProgressUpdated, membership.Organization.ID, githubID, map[string]string{
		"goal_id":  updated.ID,
		"progress": strconv.Itoa(updated.Progress),
	})

	writeJSON(w, http.StatusOK, map[string]any{"goal": updated})
}

// GenerateProgressReport regenerates the AI progress report for a goal
// @Summary Generate progress report
// @Description Assesses the goal against the team's recent commits and pull requests; replaces the previous report
// @Tags goals
// @Produce json
// @Param id path string true "Goal id"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/goals/{id}/report [post]
func (h *Handler) GenerateProgressReport(w http.ResponseWriter, r *http.Request) {
	goal, membership, err := h.goalForCaller(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	repoURL := membership.Organization.GitHubURL
	since := time.Now().UTC().AddDate(0, 0, -7)

	// Activity fetches degrade to empty input; the report still generates.
	commits, err := h.github.RepoCommits(r.Context(), repoURL, since, time.Time{})
	if err != nil {
		commits = nil
	}
	pulls, err := h.github.UserPulls(r.Context(), repoURL, "")
	if err != nil {
		pulls = nil
	}

	report, err := h.ai.GenerateProgressReport(r.Context(), *goal, commits, pulls)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.UpsertProgressReport(r.Context(), report); err != nil {
		writeError(w, err)
		return
	}

	githubID, _ := auth.GitHubIDFromContext(r.Context())
	h.events.Publish(events.ProgressReportSaved, membership.Organization.ID, githubID, map[string]string{"goal_id": goal.ID})

	writeJSON(w, http.StatusOK, map[string]any{"progress_report": report})
}

// ListProgressReports lists the organization's progress reports
// @Summary List progress reports
// @Tags goals
// @Produce json
// @Param id path string true "Organization id"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/organizations/{id}/progress-reports [get]
func (h *Handler) ListProgressReports(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membershipForOrg(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	reports, err := h.store.GetProgressReportsByOrganization(r.Context(), membership.Organization.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"progress_reports": reports})
}

// Dashboard aggregates the caller's dashboard collections
// @Summary Aggregated dashboard
// @Description Fetches goals, progress reports, activity and the dev report concurrently; a failed section degrades instead of failing the view
// @Tags dashboard
// @Produce json
// @Success 200 {object} aggregate.Dashboard
// @Failure 404 {object} map[string]interface{} "No organization; onboarding required"
// @Security BearerAuth
// @Router /v1/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	githubID, _ := auth.GitHubIDFromContext(r.Context())
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}

	dashboard := h.agg.Dashboard(r.Context(), membership.Organization, githubID, membership.Role)
	writeJSON(w, http.StatusOK, dashboard)
}

// DevReport returns the organization's daily development report
// @Summary Daily dev report
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "No repository configured"
// @Security BearerAuth
// @Router /v1/dev-report [get]
func (h *Handler) DevReport(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := h.reports.LatestDevReport(r.Context(), membership.Organization)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

// MyCommits lists the caller's commits in the organization repository
// @Summary Caller's commits
// @Tags activity
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/commits [get]
func (h *Handler) MyCommits(w http.ResponseWriter, r *http.Request) {
	githubID, _ := auth.GitHubIDFromContext(r.Context())
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}

	commits, err := h.github.UserCommits(r.Context(), membership.Organization.GitHubURL, githubID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"commits": commits})
}

// MyPulls lists the caller's pull requests in the organization repository
// @Summary Caller's pull requests
// @Tags activity
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/pulls [get]
func (h *Handler) MyPulls(w http.ResponseWriter, r *http.Request) {
	githubID, _ := auth.GitHubIDFromContext(r.Context())
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}

	pulls, err := h.github.UserPulls(r.Context(), membership.Organization.GitHubURL, githubID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pulls": pulls})
}

// GenerateDocumentation generates AI documentation for a commit or pull request
// @Summary Generate documentation
// @Tags reports
// @Accept json
// @Produce json
// @Param body body object true "type (commit|pr) and id"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/documentation [post]
func (h *Handler) GenerateDocumentation(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationError(w, "invalid request body")
		return
	}

	repoURL := membership.Organization.GitHubURL

	var doc *models.Documentation
	switch req.Type {
	case "commit":
		commit, err := h.github.Commit(r.Context(), repoURL, req.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		doc, err = h.ai.GenerateCommitDocumentation(r.Context(), commit)
		if err != nil {
			writeError(w, err)
			return
		}
	case "pr":
		number, err := strconv.Atoi(req.ID)
		if err != nil {
			validationError(w, "id must be a pull request number")
			return
		}
		pull, err := h.github.Pull(r.Context(), repoURL, number)
		if err != nil {
			writeError(w, err)
			return
		}
		doc, err = h.ai.GeneratePullDocumentation(r.Context(), pull)
		if err != nil {
			writeError(w, err)
			return
		}
	default:
		validationError(w, "type must be commit or pr")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"documentation": doc})
}

// AnalyzeCodebase answers a question about the organization's codebase
// @Summary Query the codebase
// @Tags reports
// @Produce json
// @Param query query string true "Question about the codebase"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/codebase/analyze [get]
func (h *Handler) AnalyzeCodebase(w http.ResponseWriter, r *http.Request) {
	membership, err := h.membership(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		validationError(w, "query is required")
		return
	}

	repoURL := membership.Organization.GitHubURL
	since := time.Now().UTC().AddDate(0, 0, -7)

	commits, err := h.github.RepoCommits(r.Context(), repoURL, since, time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	pulls, err := h.github.UserPulls(r.Context(), repoURL, "")
	if err != nil {
		pulls = nil
	}

	answer, err := h.ai.AnswerCodebaseQuery(r.Context(), query, commits, pulls)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"analysis": answer})
}

func (h *Handler) membership(r *http.Request) (*models.Membership, error) {
	githubID, ok := auth.GitHubIDFromContext(r.Context())
	if !ok {
		return nil, errUnauthorized
	}
	return h.orgs.Resolve(r.Context(), githubID)
}

// membershipForOrg resolves the caller and checks the path organization is
// theirs; the single-organization model makes any other id a foreign one.
func (h *Handler) membershipForOrg(r *http.Request, orgID string) (*models.Membership, error) {
	membership, err := h.membership(r)
	if err != nil {
		return nil, err
	}
	if membership.Organization.ID != orgID {
		return nil, errForbidden
	}
	return membership, nil
}

func (h *Handler) goalForCaller(r *http.Request, goalID string) (*models.Goal, *models.Membership, error) {
	membership, err := h.membership(r)
	if err != nil {
		return nil, nil, err
	}

	goal, err := h.store.GetGoal(r.Context(), goalID)
	if err != nil {
		return nil, nil, err
	}
	if goal.OrganizationID != membership.Organization.ID {
		return nil, nil, errForbidden
	}

	return goal, membership, nil
}

var (
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "kind": kind})
}

func validationError(w http.ResponseWriter, msg string) {
	errorJSON(w, http.StatusUnprocessableEntity, "validation", msg)
}

func forbidden(w http.ResponseWriter) {
	errorJSON(w, http.StatusForbidden, "unauthorized", "insufficient role")
}

// writeError maps the domain's discriminated error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errUnauthorized):
		errorJSON(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, errForbidden):
		forbidden(w)
	case errors.Is(err, resolve.ErrNoOrganization):
		errorJSON(w, http.StatusNotFound, "not_found", "no organization for user")
	case errors.Is(err, storage.ErrOrgNotFound),
		errors.Is(err, storage.ErrKeyNotFound),
		errors.Is(err, storage.ErrApplicationNotFound),
		errors.Is(err, storage.ErrGoalNotFound),
		errors.Is(err, github.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, storage.ErrApplicationClosed),
		errors.Is(err, storage.ErrAlreadyAffiliated),
		errors.Is(err, github.ErrNoRepository):
		errorJSON(w, http.StatusUnprocessableEntity, "validation", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		errorJSON(w, http.StatusGatewayTimeout, "network", "upstream request timed out")
	default:
		errorJSON(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
