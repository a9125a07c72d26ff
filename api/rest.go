package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"powerfour/db"
	"powerfour/games"
)

// Error response structure
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomSummary is the listing view of an open room.
type RoomSummary struct {
	RoomID  string           `json:"roomId"`
	Status  games.GameStatus `json:"status"`
	Players int              `json:"players"`
}

// Response helpers
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// NewRouter mounts the websocket endpoint and the read-only REST views.
func NewRouter(hub *Hub, rooms *db.Directory) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/ws", hub.ServeWS)
	router.HandleFunc("/api/rooms", listRooms(rooms)).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/{id}", getRoom(rooms)).Methods(http.MethodGet)
	router.HandleFunc("/healthz", health(hub, rooms)).Methods(http.MethodGet)

	return router
}

// listRooms returns every open room
func listRooms(rooms *db.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snaps := rooms.List()
		result := make([]RoomSummary, 0, len(snaps))
		for _, s := range snaps {
			result = append(result, RoomSummary{RoomID: s.Code, Status: s.Status, Players: len(s.Players)})
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

// getRoom returns a specific room
func getRoom(rooms *db.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		room, err := rooms.Get(vars["id"])
		if errors.Is(err, games.ErrRoomNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Error retrieving room")
			return
		}
		respondWithJSON(w, http.StatusOK, room)
	}
}

func health(hub *Hub, rooms *db.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"rooms":       rooms.Len(),
			"connections": hub.Len(),
		})
	}
}
