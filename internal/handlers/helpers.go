package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	boardservice "github.com/askar/teamboard/internal/service/board"
	teamservice "github.com/askar/teamboard/internal/service/team"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

// errorKind names the failure for clients. Unknown errors map to "Internal".
func errorKind(err error) string {
	switch {
	case errors.Is(err, teamservice.ErrAlreadyTeamed):
		return "AlreadyTeamed"
	case errors.Is(err, teamservice.ErrNameTaken):
		return "NameTaken"
	case errors.Is(err, teamservice.ErrInvalidCode):
		return "InvalidCode"
	case errors.Is(err, teamservice.ErrNotLeader):
		return "NotLeader"
	case errors.Is(err, teamservice.ErrDuplicatePending):
		return "DuplicatePending"
	case errors.Is(err, teamservice.ErrAlreadyResolved):
		return "AlreadyResolved"
	case errors.Is(err, teamservice.ErrNotAMember):
		return "NotAMember"
	case errors.Is(err, teamservice.ErrTargetNotMember):
		return "TargetNotMember"
	case errors.Is(err, teamservice.ErrCannotKickSelf):
		return "CannotKickSelf"
	case errors.Is(err, teamservice.ErrSelfInvite):
		return "SelfInvite"
	case errors.Is(err, teamservice.ErrAlreadyMember):
		return "AlreadyMember"
	case errors.Is(err, teamservice.ErrNotFound), errors.Is(err, boardservice.ErrNotFound):
		return "NotFound"
	case errors.Is(err, boardservice.ErrInvalidStatus):
		return "InvalidStatus"
	default:
		return "Internal"
	}
}

// respondWithServiceError maps typed service errors onto HTTP statuses.
func respondWithServiceError(w http.ResponseWriter, err error) {
	kind := errorKind(err)
	var code int
	switch kind {
	case "NotFound", "InvalidCode", "TargetNotMember":
		code = http.StatusNotFound
	case "NotLeader":
		code = http.StatusForbidden
	case "AlreadyTeamed", "NameTaken", "DuplicatePending", "AlreadyResolved",
		"NotAMember", "CannotKickSelf", "SelfInvite", "AlreadyMember", "InvalidStatus":
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}
	respondWithJSON(w, code, errorResponse{Error: err.Error(), Kind: kind})
}
