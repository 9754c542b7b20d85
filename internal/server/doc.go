// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the HTTP server of the application.
//
// It handles startup, stop signals and graceful shutdown.
package server
