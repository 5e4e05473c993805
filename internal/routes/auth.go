package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/askar/teamboard/internal/handlers"
	"github.com/askar/teamboard/internal/middleware"
)

func registerAuthRoutes(router *mux.Router, h *handlers.AuthHandler) {
	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.Use(middleware.ResponseWrapperMiddleware)
	authRouter.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.Login).Methods(http.MethodPost)
}
