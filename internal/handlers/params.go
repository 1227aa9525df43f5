package handlers

import (
	"net/http"
	"strconv"
)

// paramInt reads a pat route parameter as an int.
func paramInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(":" + name))
}

// userIDFromContext returns the authenticated user id placed in the request
// context by the JWT middleware.
func userIDFromContext(r *http.Request) (int, bool) {
	id, ok := r.Context().Value("user_id").(int)
	return id, ok
}

func roleFromContext(r *http.Request) (string, bool) {
	role, ok := r.Context().Value("role").(string)
	return role, ok
}
