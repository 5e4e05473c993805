package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/askar/teamboard/internal/cache"
	"github.com/askar/teamboard/internal/logger"
	"github.com/askar/teamboard/internal/middleware"
	"github.com/askar/teamboard/internal/models"
	teamservice "github.com/askar/teamboard/internal/service/team"
)

const teamCacheTTL = 5 * time.Minute

// TeamHandler exposes the membership lifecycle over HTTP.
type TeamHandler struct {
	service  *teamservice.Service
	cache    cache.CacheInterface
	validate *validator.Validate
	log      *logger.Logger
}

func NewTeamHandler(service *teamservice.Service, c cache.CacheInterface, validate *validator.Validate) *TeamHandler {
	return &TeamHandler{
		service:  service,
		cache:    c,
		validate: validate,
		log:      logger.NewLogger("team-handler"),
	}
}

type createTeamRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Theme string `json:"theme" validate:"max=255"`
}

type joinByCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type joinRequestRequest struct {
	Message string `json:"message" validate:"max=500"`
}

type respondRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject decline"`
}

type inviteRequest struct {
	Username string `json:"username" validate:"required"`
	Message  string `json:"message" validate:"max=500"`
}

type settingsRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Theme *string `json:"theme" validate:"omitempty,max=255"`
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	team, err := h.service.CreateTeam(r.Context(), userID, req.Name, req.Theme)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.CurrentUserID(r.Context())

	teams, err := h.service.ListTeams(r.Context(), r.URL.Query().Get("q"), userID)
	if err != nil {
		h.log.WithContext(r.Context()).Error("list teams failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list teams")
		return
	}
	respondWithJSON(w, http.StatusOK, teams)
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.CurrentUserID(r.Context())
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	// Detail is cached without the viewer-specific role; MyRole is filled
	// in from the member list after a hit.
	cacheKey := teamCacheKey(teamID)
	if cached, err := h.cache.Get(r.Context(), cacheKey); err == nil {
		var detail models.TeamDetail
		if err := json.Unmarshal([]byte(cached), &detail); err == nil {
			for _, m := range detail.Members {
				if m.UserID == userID {
					detail.MyRole = m.Role
				}
			}
			respondWithJSON(w, http.StatusOK, detail)
			return
		}
	}

	detail, err := h.service.GetTeam(r.Context(), teamID, userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if data, err := json.Marshal(models.TeamDetail{
		Team:        detail.Team,
		MemberCount: detail.MemberCount,
		Members:     detail.Members,
	}); err == nil {
		if err := h.cache.Set(r.Context(), cacheKey, string(data), teamCacheTTL); err != nil {
			h.log.Warn("cache set failed", "key", cacheKey, "error", err)
		}
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *TeamHandler) MyTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	detail, err := h.service.MyTeam(r.Context(), userID)
	if err != nil {
		h.log.WithContext(r.Context()).Error("my team failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get team")
		return
	}
	if detail == nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"team": nil, "role": nil})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"team": detail, "role": detail.MyRole})
}

func (h *TeamHandler) MyInvitations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	invitations, err := h.service.MyInvitations(r.Context(), userID)
	if err != nil {
		h.log.WithContext(r.Context()).Error("my invitations failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get invitations")
		return
	}
	if invitations == nil {
		invitations = []models.TeamInvitation{}
	}
	respondWithJSON(w, http.StatusOK, invitations)
}

func (h *TeamHandler) JoinByCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req joinByCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	team, err := h.service.JoinByCode(r.Context(), userID, req.Code)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	h.invalidateTeam(r, team.ID)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "team": team})
}

func (h *TeamHandler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req joinRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	request, err := h.service.RequestToJoin(r.Context(), userID, teamID, req.Message)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, request)
}

func (h *TeamHandler) JoinRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	requests, err := h.service.JoinRequests(r.Context(), userID, teamID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if requests == nil {
		requests = []models.JoinRequest{}
	}
	respondWithJSON(w, http.StatusOK, requests)
}

func (h *TeamHandler) RespondToJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.service.RespondToJoinRequest(r.Context(), userID, requestID, req.Action == "accept")
	if err != nil {
		// Stale accept: the requester joined elsewhere in the interim. The
		// request was resolved as rejected; report the conflict.
		if status != "" && errors.Is(err, teamservice.ErrAlreadyTeamed) {
			respondWithJSON(w, http.StatusConflict, map[string]interface{}{
				"ok":     false,
				"status": status,
				"error":  "user already belongs to another team",
				"kind":   "AlreadyTeamed",
			})
			return
		}
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "status": status})
}

func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	invitation, err := h.service.Invite(r.Context(), userID, teamID, req.Username, req.Message)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, invitation)
}

func (h *TeamHandler) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	invitationID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invitation ID")
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.service.RespondToInvitation(r.Context(), userID, invitationID, req.Action == "accept")
	if err != nil {
		if status != "" && errors.Is(err, teamservice.ErrAlreadyTeamed) {
			respondWithJSON(w, http.StatusConflict, map[string]interface{}{
				"ok":     false,
				"status": status,
				"error":  "you already belong to another team",
				"kind":   "AlreadyTeamed",
			})
			return
		}
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "status": status})
}

func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	if err := h.service.Leave(r.Context(), userID, teamID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	h.invalidateTeam(r, teamID)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *TeamHandler) TransferLeadership(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}
	targetID, err := pathID(r, "user_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.TransferLeadership(r.Context(), userID, teamID, targetID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	h.invalidateTeam(r, teamID)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *TeamHandler) Kick(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}
	targetID, err := pathID(r, "user_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.Kick(r.Context(), userID, teamID, targetID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	h.invalidateTeam(r, teamID)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *TeamHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	team, err := h.service.UpdateSettings(r.Context(), userID, teamID, req.Name, req.Theme)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	h.invalidateTeam(r, teamID)
	respondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) RegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	code, err := h.service.RegenerateInviteCode(r.Context(), userID, teamID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	h.invalidateTeam(r, teamID)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "invite_code": code})
}

func (h *TeamHandler) invalidateTeam(r *http.Request, teamID int64) {
	if err := h.cache.Delete(r.Context(), teamCacheKey(teamID)); err != nil {
		h.log.Warn("cache invalidation failed", "team_id", teamID, "error", err)
	}
}

func teamCacheKey(teamID int64) string {
	return fmt.Sprintf("team:%d:detail", teamID)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
