// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// MessageResponse is the envelope used for plain success and error replies.
// Error messages are prefixed with "Error: ".
type MessageResponse struct {
	Message string `json:"message"`
}

// JWTResponse is returned by a successful sign-in.
type JWTResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// UserResponse is the public view of a user used by profile and admin
// listings.
type UserResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Approved bool     `json:"approved"`
}

// NewUserResponse builds the public view of u.
func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:       u.UserID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.RoleNames(),
		Approved: u.IsApproved(),
	}
}

// NewUserResponses builds public views for a list of users.
func NewUserResponses(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
