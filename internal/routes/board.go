package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/askar/teamboard/internal/handlers"
	"github.com/askar/teamboard/internal/middleware"
)

func registerBoardRoutes(router *mux.Router, h *handlers.BoardHandler, ws *handlers.WebSocketHandler) {
	boardRouter := router.PathPrefix("/board").Subrouter()

	// The socket authenticates via query parameter; everything else uses the
	// bearer header.
	boardRouter.Handle("/ws/{room}", middleware.WebSocketAuthMiddleware(
		http.HandlerFunc(ws.HandleBoard))).Methods(http.MethodGet)

	taskRouter := boardRouter.PathPrefix("/tasks").Subrouter()
	taskRouter.Use(middleware.AuthMiddleware, middleware.ResponseWrapperMiddleware)
	taskRouter.HandleFunc("", h.ListTasks).Methods(http.MethodGet)
	taskRouter.HandleFunc("", h.CreateTask).Methods(http.MethodPost)
	taskRouter.HandleFunc("/{id:[0-9]+}", h.UpdateTask).Methods(http.MethodPatch)
	taskRouter.HandleFunc("/{id:[0-9]+}/status", h.MoveTask).Methods(http.MethodPatch)
	taskRouter.HandleFunc("/{id:[0-9]+}", h.DeleteTask).Methods(http.MethodDelete)
}
