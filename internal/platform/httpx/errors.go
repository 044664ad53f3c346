// Package httpx provides HTTP response utilities.
package httpx

import "net/http"

// NotFound answers 404 with problem details.
func NotFound(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusNotFound, "Not Found", detail)
}

// Forbidden answers 403 with problem details.
func Forbidden(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusForbidden, "Forbidden", detail)
}

// Unauthorized answers 401 with problem details.
func Unauthorized(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusUnauthorized, "Unauthorized", detail)
}

// BadRequest answers 400 with problem details.
func BadRequest(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusBadRequest, "Validation Failed", detail)
}

// Conflict answers 409 with problem details.
func Conflict(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusConflict, "Duplicate", detail)
}

// Internal answers 500 without leaking internals.
func Internal(w http.ResponseWriter) {
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
