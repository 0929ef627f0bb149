package handlers

import "net/http"

type sessionResponse struct {
	SessionID  string `json:"session_id"`
	Unlocked   bool   `json:"unlocked"`
	InFlight   int    `json:"in_flight"`
	ImageCount int    `json:"image_count"`
}

// SessionStatus reports the session's gate flag and activity.
func (a *App) SessionStatus(w http.ResponseWriter, r *http.Request) {
	sid, state := a.sessionState(r)
	a.json(w, http.StatusOK, sessionResponse{
		SessionID:  sid,
		Unlocked:   state.Unlocked(),
		InFlight:   state.InFlight(),
		ImageCount: len(state.List()),
	})
}

// UnlockSession records that the user passed the age gate.
func (a *App) UnlockSession(w http.ResponseWriter, r *http.Request) {
	sid, state := a.sessionState(r)
	state.Unlock()
	a.json(w, http.StatusOK, sessionResponse{
		SessionID:  sid,
		Unlocked:   true,
		InFlight:   state.InFlight(),
		ImageCount: len(state.List()),
	})
}
