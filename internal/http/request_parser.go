package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/entity"
)

// Query keys with a meaning of their own; every other key is a filter.
var reservedQueryKeys = map[string]bool{"page": true, "size": true, "sort": true}

// ParseQueryOptions reads page, size and sort from a list URL. Other keys
// are passed through as filters. Invalid numbers fall back to the first
// page and defaultSize.
func ParseQueryOptions(query url.Values, defaultSize int) entity.QueryOptions {
	opts := entity.QueryOptions{Size: defaultSize}

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p >= 0 {
			opts.Page = p
		}
	}
	if v := strings.TrimSpace(query.Get("size")); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 && s <= maxPageSize {
			opts.Size = s
		}
	}
	for _, v := range query["sort"] {
		if v = sanitizeInput(v); v != "" {
			opts.Sort = append(opts.Sort, v)
		}
	}
	for key, values := range query {
		if reservedQueryKeys[key] {
			continue
		}
		if opts.Filters == nil {
			opts.Filters = url.Values{}
		}
		for _, v := range values {
			opts.Filters.Add(key, sanitizeInput(v))
		}
	}

	return opts
}

const (
	maxPageSize  = 1000
	maxBodyBytes = 1 << 20
)

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// Values returns the parsed data as sanitized form values. JSON objects
// contribute their scalar members.
func (p *RequestBodyParser) Values() url.Values {
	out := url.Values{}
	if p.jsonData != nil {
		for key, val := range p.jsonData {
			if val == nil {
				out.Set(key, "")
				continue
			}
			if s := stringValue(val); s != "" {
				out.Set(key, sanitizeInput(s))
			}
		}
		return out
	}
	for key, values := range p.formData {
		for _, v := range values {
			out.Add(key, sanitizeInput(v))
		}
	}
	return out
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}
