// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errHTTPServerNotConfigured is returned by [NewServer] when there is no HTTP
// handler to serve the API or no address to listen on.
var errHTTPServerNotConfigured = errors.New("http api server not configured: handler or listen address missing")
