package models

// ChatMessage is one line of the widget transcript.
type ChatMessage struct {
	Text   string `json:"text"`
	IsUser bool   `json:"is_user"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the chat endpoint.
type ChatResponse struct {
	Reply      string           `json:"reply"`
	Properties []PropertyResult `json:"properties"`
}

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
