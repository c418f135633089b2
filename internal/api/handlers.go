package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"floatchat.com/core/internal/core"
)

// APIHandler translates presentation intents (navigate, login, logout,
// submit-query) into coordinator calls and answers with state snapshots.
type APIHandler struct {
	coordinator *core.Coordinator
}

func NewAPIHandler(c *core.Coordinator) *APIHandler {
	return &APIHandler{coordinator: c}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !h.coordinator.Login(req.Email, req.Password) {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	json.NewEncoder(w).Encode(h.coordinator.Snapshot())
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.coordinator.Logout()
	json.NewEncoder(w).Encode(h.coordinator.Snapshot())
}

type NavigateRequest struct {
	Page string `json:"page"`
}

func (h *APIHandler) NavigateHandler(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Unknown targets are not an error; the coordinator coerces them to home.
	resolved := h.coordinator.Navigate(req.Page)
	slog.Debug("navigated", "target", req.Page, "resolved", resolved)

	json.NewEncoder(w).Encode(h.coordinator.Snapshot())
}

func (h *APIHandler) StateHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.coordinator.Snapshot())
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.coordinator.Snapshot().Chat)
}

type SubmitMessageRequest struct {
	Content string `json:"content"`
}

type SubmitMessageResponse struct {
	Accepted bool            `json:"accepted"`
	Chat     core.QueryState `json:"chat"`
}

// SubmitMessageHandler dispatches a query to the answer service. A rejected
// submission (empty text, or a request already pending) is a no-op answered
// with 200, never an error; an accepted one answers 202 and the assistant
// reply arrives in a later snapshot.
func (h *APIHandler) SubmitMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	accepted := h.coordinator.Submit(req.Content)
	if accepted {
		w.WriteHeader(http.StatusAccepted)
	}

	json.NewEncoder(w).Encode(SubmitMessageResponse{
		Accepted: accepted,
		Chat:     h.coordinator.Snapshot().Chat,
	})
}
