// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-user-gate/models"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RealIP, h.withTraceID, h.withLogging, middleware.Recoverer)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/version", h.getServerVersion)

		// anonymous, rate limited per client IP
		r.Route("/auth", func(r chi.Router) {
			r.Use(h.withRateLimit)
			r.Post("/signin", h.signIn)
			r.Post("/signup", h.signUp)
			r.Post("/forgot-password", h.forgotPassword)
			r.Post("/verify-otp", h.verifyOTP)
			r.Post("/reset-password", h.resetPassword)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(h.auth)
			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.updateProfile)
			r.Post("/change-password", h.changePassword)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.auth, h.requireRole(models.RoleAdmin))
			r.Get("/users", h.listUsers)
			r.Get("/users/{id}", h.getUser)
			r.Put("/users/{id}/roles", h.updateUserRoles)
			r.Delete("/users/{id}", h.deleteUser)
			r.Get("/statistics", h.getStatistics)
			r.Get("/pending-users", h.listPendingUsers)
			r.Post("/approve-user/{id}", h.approveUser)
			r.Delete("/reject-user/{id}", h.rejectUser)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
