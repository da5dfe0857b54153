// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// User represents a user record in our system.
//
// The db:"..." tags let sqlx scan SELECT columns straight into the struct.
type User struct {
	ID    int64  `json:"id"    db:"id"`
	Name  string `json:"name"  db:"name"`
	Email string `json:"email" db:"email"`
	Age   int    `json:"age"   db:"age"`
}

// CreateUserRequest is the body of POST /api/create-user.
//
// The fields are pointers so validate:"required" checks that the key was
// sent at all. A present zero value ("", 0) still passes.
type CreateUserRequest struct {
	Name  *string `json:"name"  validate:"required"`
	Email *string `json:"email" validate:"required"`
	Age   *int    `json:"age"   validate:"required"`
}

// UpdateUserRequest is the body of PUT /api/user/{id}.
//
// Zero values mean "leave unchanged": a supplied "" or 0 is skipped the
// same way an omitted field is.
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// Empty reports whether the request would change nothing.
func (u UpdateUserRequest) Empty() bool {
	return u.Name == "" && u.Email == "" && u.Age == 0
}
