// Package user contains all HTTP handlers related to the User resource.
//
// Every exported function is a factory: it receives the storage once, at
// route registration, and returns the http.HandlerFunc that runs on every
// request. The returned closure holds no state of its own; the only thing
// shared between requests is the storage behind the interface.
//
//	r.Post("/api/create-user", user.New(storage))
package user

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/types"
	"github.com/aanand-mishra/users-api/internal/utils/response"
)

const (
	msgCreated = "User created successfully!"
	msgUpdated = "User updated successfully!"
	msgDeleted = "User deleted successfully!"

	errNotFound       = "User not found"
	errDuplicateEmail = "Email already exists"
	errEmptyBody      = "request body is empty"
	errInvalidID      = "invalid id: must be an integer"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

// newValidator reports fields by their JSON name ("name") rather than the
// Go field name ("Name").
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/create-user
//
// Request body (JSON):
//
//	{ "name": "Rakesh", "email": "rakesh@test.com", "age": 35 }
//
// Success response (201 Created):
//
//	{ "message": "User created successfully!" }
//
// Error responses:
//
//	400 Bad Request: email already exists, empty body, malformed JSON,
//	                 or a missing field
//	500 Internal: database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a user")

		var req types.CreateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := validate.Struct(req); err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		id, err := storage.CreateUser(r.Context(), *req.Name, *req.Email, *req.Age)
		if err != nil {
			writeStorageError(w, "error creating user", err)
			return
		}

		slog.Info("user created", slog.Int64("id", id))
		response.WriteMessage(w, http.StatusCreated, msgCreated)
	}
}

// GetList handles GET /api/get-all-users
// Responds 200 with an array of users, [] when there are none.
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all users")

		users, err := storage.GetUsers(r.Context())
		if err != nil {
			writeStorageError(w, "error getting users", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, users)
	}
}

// GetByID handles GET /api/user/{id}
//
// Success response (200 OK):
//
//	{ "id": 1, "name": "John Doe", "email": "john@example.com", "age": 30 }
//
// Error responses:
//
//	400 Bad Request: id is not a valid integer
//	404 Not Found: no such user
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a user", slog.Int64("id", id))

		user, err := storage.GetUserByID(r.Context(), id)
		if err != nil {
			writeStorageError(w, "error getting user", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, user)
	}
}

// Update handles PUT /api/user/{id}
//
// Request body (JSON), every field optional:
//
//	{ "name": "Jane", "email": "jane@test.com", "age": 40 }
//
// Only fields carrying a non-zero value are written. "age": 0 and
// "name": "" are treated as if they had been left out, so clients cannot
// blank a field or zero an age through this endpoint.
//
// Error responses:
//
//	400 Bad Request: bad id, empty or malformed body, or the new email
//	                 belongs to another user
//	404 Not Found: no such user
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a user", slog.Int64("id", id))

		var req types.UpdateUserRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Empty() {
			// Still probed below so a missing user reports 404.
			slog.Debug("update carries no changes", slog.Int64("id", id))
		}

		if err := storage.UpdateUserByID(r.Context(), id, req); err != nil {
			writeStorageError(w, "error updating user", err)
			return
		}

		slog.Info("user updated", slog.Int64("id", id))
		response.WriteMessage(w, http.StatusOK, msgUpdated)
	}
}

// Delete handles DELETE /api/user/{id}
// Responds 200 with a message, or 404 when there is no such user.
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a user", slog.Int64("id", id))

		if err := storage.DeleteUserByID(r.Context(), id); err != nil {
			writeStorageError(w, "error deleting user", err)
			return
		}

		slog.Info("user deleted", slog.Int64("id", id))
		response.WriteMessage(w, http.StatusOK, msgDeleted)
	}
}

// parseID reads the {id} path segment. On failure it has already written
// the 400 response and returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, errInvalidID)
		return 0, false
	}
	return id, true
}

// decodeBody decodes the JSON body into dst. On failure it has already
// written the 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteError(w, http.StatusBadRequest, errEmptyBody)
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

// writeStorageError maps storage sentinels to their domain responses.
// Anything unrecognised is logged and reported as a 500.
func writeStorageError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, errNotFound)
	case errors.Is(err, storage.ErrDuplicateEmail):
		response.WriteError(w, http.StatusBadRequest, errDuplicateEmail)
	default:
		slog.Error(msg, slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}
