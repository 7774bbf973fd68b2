package http

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
	"ledger/internal/entity"
	applog "ledger/internal/log"
	"ledger/internal/resources"
)

// dashboardRecent is how many records each dashboard card lists.
const dashboardRecent = 5

// handleDashboard renders a summary card per resource. The remote queries
// run concurrently; a failing one only marks its own card.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	cards := make([]summaryView, 2)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		cards[0] = summarize(ctx, resources.Incomes(), s.backends.Incomes)
		return nil
	})
	g.Go(func() error {
		cards[1] = summarize(ctx, resources.Monies(), s.backends.Monies)
		return nil
	})
	_ = g.Wait()

	s.render(w, r, http.StatusOK, "dashboard", dashboardPage{
		layoutData: newLayout("Dashboard", ""),
		Summaries:  cards,
	})
}

func summarize[T core.Identified](ctx context.Context, resource entity.Resource[T], backend entity.Backend[T]) summaryView {
	view := summaryView{Title: resource.Title, Entity: resource.Name}
	if backend == nil {
		view.Error = "not configured"
		return view
	}

	resp, err := backend.Query(ctx, entity.QueryOptions{Size: dashboardRecent, Sort: []string{"id,desc"}})
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Dashboard query failed",
			applog.FieldEntity, resource.Name,
			applog.FieldError, err)
		view.Error = "unavailable"
		return view
	}

	var records []T
	if resp.Body != nil {
		records = *resp.Body
	}
	view.Total = int64(len(records))
	if resp.TotalCount >= 0 {
		view.Total = resp.TotalCount
	}
	for _, record := range records {
		view.Recent = append(view.Recent, rowOf(resource.Fields, record))
	}
	return view
}
