package controllers

import (
	"net/http"

	"github.com/threadlinehq/threadline-backend/api/responses"
)

// PublicPing answers unauthenticated reachability checks.
func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"ping": "pong"})
	}
}

// PrivatePing confirms an authenticated session is valid.
func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"ping": "pong"})
	}
}

// AdminPing confirms the caller holds the admin role.
func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"ping": "pong"})
	}
}
