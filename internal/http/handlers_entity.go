package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/entity"
	applog "ledger/internal/log"
	"ledger/internal/transport"
)

// entityHandlers serves the list, detail, form and delete screens of one
// resource under /<resource.Name>.
type entityHandlers[T core.Identified] struct {
	s        *Server
	resource entity.Resource[T]
	backend  entity.Backend[T]
	base     string
}

func registerEntity[T core.Identified](s *Server, mux *http.ServeMux, resource entity.Resource[T], backend entity.Backend[T]) {
	h := &entityHandlers[T]{
		s:        s,
		resource: resource,
		backend:  backend,
		base:     "/" + resource.Name,
	}

	mux.HandleFunc(h.base, s.withSecurityHeaders(h.handleCollection))
	mux.HandleFunc("GET "+h.base+"/new", s.withSecurityHeaders(h.handleEdit))
	mux.HandleFunc("GET "+h.base+"/{id}/edit", s.withSecurityHeaders(h.handleEdit))
	mux.HandleFunc("GET "+h.base+"/{id}/view", s.withSecurityHeaders(h.handleView))
	mux.HandleFunc(h.base+"/{id}/delete", s.withSecurityHeaders(h.handleDelete))
}

// pageNavigator records where the resolver wants to go instead.
type pageNavigator struct {
	target string
}

func (n *pageNavigator) Navigate(commands ...string) {
	n.target = "/" + strings.Join(commands, "/")
}

// dialogModal records how a delete dialog was closed.
type dialogModal struct {
	dismissed bool
	result    string
}

func (m *dialogModal) Dismiss()            { m.dismissed = true }
func (m *dialogModal) Close(result string) { m.result = result }

func (h *entityHandlers[T]) handleCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		h.handleList(w, r)
		return
	}
	if b := RequirePOST(r); b != nil {
		b.Write(w)
		return
	}
	h.handleSave(w, r)
}

func (h *entityHandlers[T]) handleList(w http.ResponseWriter, r *http.Request) {
	opts := ParseQueryOptions(r.URL.Query(), h.s.pageSize)

	resp, err := h.backend.Query(r.Context(), opts)
	if err != nil {
		h.apiError(w, r, applog.OpList, err)
		return
	}

	var records []T
	if resp != nil && resp.Body != nil {
		records = *resp.Body
	}

	page := listPage{
		layoutData: newLayout(h.resource.Title, h.resource.Name),
		Entity:     h.resource.Name,
		Columns:    columns(h.resource.Fields),
		Page:       opts.Page,
		Size:       opts.Size,
		Sort:       opts.Sort,
		TotalCount: int64(len(records)),
	}
	for _, record := range records {
		page.Rows = append(page.Rows, rowOf(h.resource.Fields, record))
	}

	hasNext := false
	if resp != nil {
		if resp.TotalCount >= 0 {
			page.TotalCount = resp.TotalCount
			hasNext = int64((opts.Page+1)*opts.Size) < resp.TotalCount
		}
		if strings.Contains(resp.Link, `rel="next"`) {
			hasNext = true
		}
	}
	if opts.Page > 0 {
		page.PrevURL = h.pageURL(opts, opts.Page-1)
	}
	if hasNext {
		page.NextURL = h.pageURL(opts, opts.Page+1)
	}

	h.s.render(w, r, http.StatusOK, "list", page)
}

// pageURL links to another page of the same listing.
func (h *entityHandlers[T]) pageURL(opts entity.QueryOptions, page int) string {
	opts.Page = page
	return h.base + "?" + opts.Values().Encode()
}

func (h *entityHandlers[T]) handleView(w http.ResponseWriter, r *http.Request) {
	record, ok := h.resolve(w, r)
	if !ok {
		return
	}
	h.s.render(w, r, http.StatusOK, "view", h.detail(record))
}

func (h *entityHandlers[T]) handleEdit(w http.ResponseWriter, r *http.Request) {
	record, ok := h.resolve(w, r)
	if !ok {
		return
	}
	ctrl := entity.NewUpdateController(h.backend, h.resource, entity.HistoryFunc(func() {}))
	ctrl.Init(record)
	h.renderForm(w, r, http.StatusOK, ctrl.Form(), nil)
}

// resolve runs the route resolver and answers the request itself when no
// record is delivered.
func (h *entityHandlers[T]) resolve(w http.ResponseWriter, r *http.Request) (T, bool) {
	nav := &pageNavigator{}
	res, err := entity.NewResolver(h.backend, h.resource, nav).
		Resolve(r.Context(), entity.RouteParams{"id": r.PathValue("id")})
	if err != nil {
		h.apiError(w, r, applog.OpResolve, err)
		return res.Entity, false
	}
	if !res.Resolved {
		h.s.redirect(w, r, nav.target, nil)
		return res.Entity, false
	}
	return res.Entity, true
}

func (h *entityHandlers[T]) handleSave(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	wentBack := false
	ctrl := entity.NewUpdateController(h.backend, h.resource, entity.HistoryFunc(func() { wentBack = true }))
	ctrl.Form().Bind(parser.Values())

	op, fallback := applog.OpCreate, fmt.Sprintf("%s created", h.resource.Title)
	if ctrl.Form().Get("id") != "" {
		op, fallback = applog.OpUpdate, fmt.Sprintf("%s updated", h.resource.Title)
	}

	result := <-ctrl.Save(r.Context())
	if result.Err != nil {
		if isValidationError(result.Err) {
			if isHTMX(r) {
				UnprocessableEntityError(strings.Join(errorLines(result.Err), "; ")).
					TriggerErrorNotification(fmt.Sprintf("%s not saved: check the highlighted fields", h.resource.Title)).
					Write(w)
				return
			}
			h.renderForm(w, r, http.StatusUnprocessableEntity, ctrl.Form(), result.Err)
			return
		}
		h.s.structured.LogError(r.Context(), "Entity save failed", result.Err, applog.ComponentEntity, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", "", ""))
		h.renderForm(w, r, http.StatusBadGateway, ctrl.Form(), errors.New("The remote API rejected the record"))
		return
	}

	id, hasID := savedIdentifier(result, ctrl.Form())
	h.s.structured.LogEntitySaved(r.Context(), h.resource.Name, op, id, hasID)

	b := NewHTMXResponse().TriggerEntitySaved(h.resource.Name, id)
	alert, param := "", ""
	if result.Response != nil {
		alert, param = result.Response.Alert, result.Response.AlertParam
	}
	b.TriggerSuccessNotification(alertMessage(alert, param, fallback))
	if result.Created {
		b.TriggerFormReset()
	}

	if wentBack {
		h.s.redirect(w, r, h.base, b)
		return
	}
	b.Write(w)
}

// savedIdentifier prefers the identifier the API returned.
func savedIdentifier[T core.Identified](result entity.SaveResult[T], form *entity.Form[T]) (int64, bool) {
	if result.Response != nil && result.Response.Body != nil {
		if id, ok := (*result.Response.Body).Identifier(); ok {
			return id, true
		}
	}
	if id, err := strconv.ParseInt(form.Get("id"), 10, 64); err == nil {
		return id, true
	}
	return 0, false
}

func (h *entityHandlers[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		record, ok := h.resolve(w, r)
		if !ok {
			return
		}
		h.s.render(w, r, http.StatusOK, "delete", h.detail(record))
		return
	}
	if b := RequireDeleteOrPOST(r); b != nil {
		b.Write(w)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil {
		h.s.redirect(w, r, "/"+entity.NotFoundRoute, nil)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	modal := &dialogModal{}
	dialog := entity.NewDeleteDialog(h.backend, modal, nil)

	if parser.Get("action") == "cancel" {
		dialog.Cancel()
		if modal.dismissed {
			h.s.redirect(w, r, h.base, nil)
		}
		return
	}

	if err := dialog.ConfirmDelete(r.Context(), id); err != nil {
		if errors.Is(err, transport.ErrNotFound) {
			h.s.redirect(w, r, "/"+entity.NotFoundRoute, nil)
			return
		}
		h.apiError(w, r, applog.OpDelete, err)
		return
	}

	if modal.result == entity.DeletedResult {
		h.s.structured.LogEntityDeleted(r.Context(), h.resource.Name, id)
	}
	b := NewHTMXResponse().
		TriggerEntityDeleted(h.resource.Name, id).
		TriggerSuccessNotification(fmt.Sprintf("%s %d deleted", h.resource.Title, id))
	h.s.redirect(w, r, h.base, b)
}

func (h *entityHandlers[T]) detail(record T) detailPage {
	page := detailPage{
		layoutData: newLayout(h.resource.Title, h.resource.Name),
		Entity:     h.resource.Name,
		Fields:     fieldsOf(h.resource.Fields, record),
	}
	if id, ok := record.Identifier(); ok {
		page.ID = strconv.FormatInt(id, 10)
	}
	return page
}

func (h *entityHandlers[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, form *entity.Form[T], err error) {
	page := formPage{
		layoutData: newLayout(h.resource.Title, h.resource.Name),
		Entity:     h.resource.Name,
		ID:         form.Get("id"),
		Fields:     formFields(form),
	}
	if err != nil {
		page.Errors = errorLines(err)
	}
	h.s.render(w, r, status, "form", page)
}

// errorLines splits a joined error into its non-empty lines.
func errorLines(err error) []string {
	var lines []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// apiError answers a failed remote call with 502.
func (h *entityHandlers[T]) apiError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.s.structured.LogError(r.Context(), "Remote API call failed", err, applog.ComponentEntity, op,
		applog.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, "", "", "").
			WithOperation(op))
	BadGatewayError("The remote API could not complete the request").
		TriggerErrorNotification(fmt.Sprintf("%s: the remote API request failed", h.resource.Title)).
		Write(w)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrRequired) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, entity.ErrInvalidIdentifier)
}
