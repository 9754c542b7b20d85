// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "slices"

// Role is one member of the closed set of roles a user may hold.
// The string value is the canonical name stored in the database and
// embedded in session tokens.
type Role string

const (
	RoleUser      Role = "ROLE_USER"
	RoleModerator Role = "ROLE_MODERATOR"
	RoleAdmin     Role = "ROLE_ADMIN"
)

// AllRoles lists every role in enumeration order.
var AllRoles = []Role{RoleUser, RoleModerator, RoleAdmin}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is a member of the enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// order returns the position of r in AllRoles, or len(AllRoles) if unknown.
func (r Role) order() int {
	for i, known := range AllRoles {
		if known == r {
			return i
		}
	}
	return len(AllRoles)
}

// Less orders roles by their enumeration position.
func (r Role) Less(other Role) bool {
	return r.order() < other.order()
}

// RoleNames converts roles to their string names.
func RoleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return names
}

// RolesFromNames converts canonical names back into roles, skipping names
// that are not part of the enumeration.
func RolesFromNames(names []string) []Role {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		if r := Role(n); r.Valid() {
			roles = append(roles, r)
		}
	}
	return roles
}

// NormalizeRoles returns roles de-duplicated and sorted in enumeration order.
func NormalizeRoles(roles []Role) []Role {
	out := slices.Clone(roles)
	slices.SortFunc(out, func(a, b Role) int { return a.order() - b.order() })
	return slices.Compact(out)
}
