// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/glove_pose/internal/pose"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the overlay connects from localhost
	},
}

// Calibrator is the calibration surface of one hand.
type Calibrator interface {
	StartCalibration()
	// FinishCalibration reports false when the session ended without a new
	// offset.
	FinishCalibration() bool
	CancelCalibration()
	IsCalibrating() bool
}

// WebSocket message types
type WSMessage struct {
	Action string `json:"action"` // start, finish, cancel, status
	Hand   string `json:"hand"`   // left, right
}

type WSResponse struct {
	Type        string `json:"type"` // status, error
	Hand        string `json:"hand,omitempty"`
	Session     string `json:"session,omitempty"`
	Calibrating bool   `json:"calibrating"`
	Message     string `json:"message,omitempty"`
}

// CalibrationHandler drives hand calibration over a websocket. Each started
// session gets an id that is reported until the session finishes or is
// cancelled.
type CalibrationHandler struct {
	hands map[pose.Role]Calibrator

	mu       sync.Mutex
	sessions map[pose.Role]string
}

// NewCalibrationHandler serves the given hands.
func NewCalibrationHandler(hands map[pose.Role]Calibrator) *CalibrationHandler {
	return &CalibrationHandler{
		hands:    hands,
		sessions: make(map[pose.Role]string),
	}
}

// ServeHTTP handles the WebSocket connection for calibration
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Main message loop
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("calibration: websocket read error: %v", err)
			}
			return
		}

		if err := conn.WriteJSON(h.Handle(msg)); err != nil {
			log.Printf("calibration: websocket write error: %v", err)
			return
		}
	}
}

// Handle applies one message and returns the reply.
func (h *CalibrationHandler) Handle(msg WSMessage) WSResponse {
	role, ok := pose.ParseRole(msg.Hand)
	if !ok {
		return errorResponse(msg.Hand, fmt.Sprintf("unknown hand %q", msg.Hand))
	}
	hand, ok := h.hands[role]
	if !ok {
		return errorResponse(msg.Hand, fmt.Sprintf("%s hand is not enabled", role))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	switch msg.Action {
	case "start":
		if hand.IsCalibrating() {
			return errorResponse(role.String(), "calibration already in progress")
		}
		hand.StartCalibration()
		h.sessions[role] = uuid.NewString()
		log.Printf("calibration: %s hand session %s started", role, h.sessions[role])

	case "finish":
		if !hand.IsCalibrating() {
			return errorResponse(role.String(), "no calibration in progress")
		}
		session := h.sessions[role]
		delete(h.sessions, role)
		if !hand.FinishCalibration() {
			log.Printf("calibration: %s hand session %s cancelled, no tracked controller", role, session)
			resp := h.status(role, hand)
			resp.Message = "calibration cancelled: no tracked controller"
			return resp
		}
		log.Printf("calibration: %s hand session %s finished", role, session)

	case "cancel":
		if !hand.IsCalibrating() {
			return errorResponse(role.String(), "no calibration in progress")
		}
		hand.CancelCalibration()
		log.Printf("calibration: %s hand session %s cancelled", role, h.sessions[role])
		delete(h.sessions, role)

	case "status":

	default:
		return errorResponse(role.String(), fmt.Sprintf("unknown action %q", msg.Action))
	}

	return h.status(role, hand)
}

// status must be called with mu held.
func (h *CalibrationHandler) status(role pose.Role, hand Calibrator) WSResponse {
	calibrating := hand.IsCalibrating()
	if !calibrating {
		// the session may have been ended outside this handler
		delete(h.sessions, role)
	}
	return WSResponse{
		Type:        "status",
		Hand:        role.String(),
		Session:     h.sessions[role],
		Calibrating: calibrating,
	}
}

// Status reports every enabled hand.
func (h *CalibrationHandler) Status() []WSResponse {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []WSResponse
	for _, role := range []pose.Role{pose.RoleLeftHand, pose.RoleRightHand} {
		if hand, ok := h.hands[role]; ok {
			out = append(out, h.status(role, hand))
		}
	}
	return out
}

// ServeStatus writes Status as JSON.
func (h *CalibrationHandler) ServeStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Status()); err != nil {
		log.Printf("calibration: json encode error: %v", err)
	}
}

func errorResponse(hand, message string) WSResponse {
	return WSResponse{
		Type:    "error",
		Hand:    hand,
		Message: message,
	}
}
