package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
)

// Events sent to the page through HX-Trigger.
const (
	eventEntitySaved   = "entity:saved"
	eventEntityDeleted = "entity:deleted"
	eventFormReset     = "form:reset"
	eventNotification  = "show-notification"
)

// HTMXResponseBuilder collects the HX-* headers, status and body of a
// response for htmx. Without a body it answers with the status alone.
type HTMXResponseBuilder struct {
	status   int
	header   http.Header
	triggers map[string]any
	body     []byte
}

// NewHTMXResponse starts a 200 response.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status:   http.StatusOK,
		header:   http.Header{},
		triggers: map[string]any{},
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.header.Set(name, value)
	return b
}

// Trigger queues a client-side event; a later trigger of the same name wins.
func (b *HTMXResponseBuilder) Trigger(name string, detail any) *HTMXResponseBuilder {
	b.triggers[name] = detail
	return b
}

func (b *HTMXResponseBuilder) TriggerEntitySaved(entity string, id int64) *HTMXResponseBuilder {
	return b.Trigger(eventEntitySaved, map[string]any{"entity": entity, "id": id})
}

func (b *HTMXResponseBuilder) TriggerEntityDeleted(entity string, id int64) *HTMXResponseBuilder {
	return b.Trigger(eventEntityDeleted, map[string]any{"entity": entity, "id": id})
}

// TriggerFormReset asks the page to clear the create form it submitted.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(eventFormReset, map[string]any{})
}

// Redirect makes htmx navigate to url once the response is processed.
func (b *HTMXResponseBuilder) Redirect(url string) *HTMXResponseBuilder {
	return b.Header("HX-Redirect", url)
}

// NotificationType selects the style of a show-notification toast.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
)

// TriggerNotification shows a toast for duration milliseconds.
func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, duration int) *HTMXResponseBuilder {
	return b.Trigger(eventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": duration,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// BodyHTML sets an HTML fragment as the body.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = []byte(html)
	return b
}

// Write sends headers, triggers, status and body.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, values := range b.header {
		w.Header()[name] = values
	}
	if len(b.triggers) > 0 {
		if data, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(data))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse answers with an escaped error fragment and the given status.
func ErrorResponse(status int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(status).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// UnprocessableEntityError reports a record the form could not accept.
func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// BadGatewayError reports a failed call to the remote API.
func BadGatewayError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadGateway, message)
}

// TooManyRequestsError rejects a client over its rate limit.
func TooManyRequestsError(retryAfter int) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		Header("Retry-After", strconv.Itoa(retryAfter)).
		TriggerNotification(NotificationWarning, "Too many changes, slow down", 5000)
}

func MethodNotAllowedError(allowed string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowed)
}
