package types

import "agentchat-backend/internal/session"

type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string               `json:"sessionId"`
	Session   *session.ChatSession `json:"session"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	// ResetInSeconds accompanies rate-limit errors only
	ResetInSeconds int `json:"resetInSeconds,omitempty"`
}
