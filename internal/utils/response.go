package utils

import (
	"encoding/json"
	"net/http"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// ListResponse mirrors SuccessResponse but carries the element count, the
// shape list endpoints return.
func ListResponse(count int, data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data, Count: &count}
}

func ErrorResponse(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}

func WriteJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
