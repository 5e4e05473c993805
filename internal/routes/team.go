package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/askar/teamboard/internal/handlers"
	"github.com/askar/teamboard/internal/middleware"
)

func registerTeamRoutes(router *mux.Router, h *handlers.TeamHandler) {
	teamRouter := router.PathPrefix("/teams").Subrouter()
	teamRouter.Use(middleware.AuthMiddleware, middleware.ResponseWrapperMiddleware)

	teamRouter.HandleFunc("", h.ListTeams).Methods(http.MethodGet)
	teamRouter.HandleFunc("", h.CreateTeam).Methods(http.MethodPost)
	teamRouter.HandleFunc("/my-team", h.MyTeam).Methods(http.MethodGet)
	teamRouter.HandleFunc("/my-invitations", h.MyInvitations).Methods(http.MethodGet)
	teamRouter.HandleFunc("/join-by-code", h.JoinByCode).Methods(http.MethodPost)
	teamRouter.HandleFunc("/join-requests/{id:[0-9]+}/respond", h.RespondToJoinRequest).Methods(http.MethodPost)
	teamRouter.HandleFunc("/invitations/{id:[0-9]+}/respond", h.RespondToInvitation).Methods(http.MethodPost)
	teamRouter.HandleFunc("/{id:[0-9]+}", h.GetTeam).Methods(http.MethodGet)
	teamRouter.HandleFunc("/{id:[0-9]+}/join-request", h.RequestToJoin).Methods(http.MethodPost)
	teamRouter.HandleFunc("/{id:[0-9]+}/join-requests", h.JoinRequests).Methods(http.MethodGet)
	teamRouter.HandleFunc("/{id:[0-9]+}/invite", h.Invite).Methods(http.MethodPost)
	teamRouter.HandleFunc("/{id:[0-9]+}/leave", h.Leave).Methods(http.MethodPost)
	teamRouter.HandleFunc("/{id:[0-9]+}/settings", h.UpdateSettings).Methods(http.MethodPut)
	teamRouter.HandleFunc("/{id:[0-9]+}/regenerate-code", h.RegenerateInviteCode).Methods(http.MethodPost)
	teamRouter.HandleFunc("/{id:[0-9]+}/transfer-leadership/{user_id:[0-9]+}", h.TransferLeadership).Methods(http.MethodPost)
	teamRouter.HandleFunc("/{id:[0-9]+}/members/{user_id:[0-9]+}", h.Kick).Methods(http.MethodDelete)
}
