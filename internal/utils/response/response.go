// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Every body this API sends is one of three shapes:
//
//	{"message": "..."}          success messages
//	{"error": "..."}            any failure
//	{...} / [...]               a user or list of users
package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is the body of every failed request.
type Error struct {
	Error string `json:"error"`
}

// Message is the body of a successful write.
type Message struct {
	Message string `json:"message"`
}

// WriteJSON encodes data as JSON with the given status code and the
// Content-Type: application/json header.
//
// Headers must be set before WriteHeader; anything set afterwards is
// silently dropped.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", slog.String("error", err.Error()))
	}
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Error{Error: msg})
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Message{Message: msg})
}

// GeneralError wraps any error in the standard error body.
func GeneralError(err error) Error {
	return Error{Error: err.Error()}
}

// ValidationError turns validator failures into a single readable message,
// e.g. "field name is required, field age is required".
func ValidationError(errs validator.ValidationErrors) Error {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Error{Error: strings.Join(errMessages, ", ")}
}
