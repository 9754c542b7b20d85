// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks inbound request bodies before they reach the
// service layer.
//
// The rules live in the `validate` struct tags of the request models and are
// evaluated by go-playground/validator. Field names in errors are the JSON
// names the client sent.
package validators

import "context"

// Validator validates the provided input and optionally restricts
// validation to the named fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
