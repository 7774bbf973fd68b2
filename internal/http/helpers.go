package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	return "req_" + uuid.NewString()
}

// requestIDFrom keeps a well-formed inbound X-Request-ID, or makes a new one.
func requestIDFrom(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if id == "" || len(id) > 128 || strings.ContainsAny(id, " \t\r\n") {
		return generateRequestID()
	}
	return id
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// isMutating reports whether the method changes remote state.
func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// alertMessage renders an alert header pair from the API, falling back when
// the API sent none.
func alertMessage(alert, param, fallback string) string {
	if alert == "" {
		return fallback
	}
	if param == "" {
		return alert
	}
	return fmt.Sprintf("%s (%s)", alert, param)
}
