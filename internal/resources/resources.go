// Package resources declares the record types served by the remote API and
// the routes they are reachable under.
package resources

import (
	"ledger/internal/core"
	"ledger/internal/entity"
)

// Route prefixes of the entity screens.
const (
	IncomeRoute = "income"
	MoneyRoute  = "money"
)

// Monies describes the Money resource at api/monies.
func Monies() entity.Resource[core.Money] {
	return entity.Resource[core.Money]{
		Name:  MoneyRoute,
		Path:  "api/monies",
		Title: "Monies",
		New:   func() core.Money { return core.Money{} },
		Fields: []entity.Field[core.Money]{
			entity.IDField(func(m *core.Money) **int64 { return &m.ID }),
			entity.TextField("name", "Name", false, func(m *core.Money) **string { return &m.Name }),
			entity.TextField("roll", "Roll", true, func(m *core.Money) **string { return &m.Roll }),
			entity.IntegerField("income", "Income", true, func(m *core.Money) **int64 { return &m.Income }),
		},
	}
}

// Incomes describes the Income resource at api/incomes.
func Incomes() entity.Resource[core.Income] {
	return entity.Resource[core.Income]{
		Name:  IncomeRoute,
		Path:  "api/incomes",
		Title: "Incomes",
		New:   func() core.Income { return core.Income{} },
		Fields: []entity.Field[core.Income]{
			entity.IDField(func(i *core.Income) **int64 { return &i.ID }),
			entity.TextField("name", "Name", false, func(i *core.Income) **string { return &i.Name }),
			entity.TextField("roll", "Roll", false, func(i *core.Income) **string { return &i.Roll }),
			entity.IntegerField("income", "Income", true, func(i *core.Income) **int64 { return &i.Income }),
		},
	}
}

// Route is one entry of the entity routing table.
type Route struct {
	// Prefix is the first path segment, e.g. "money".
	Prefix string
	Title  string
}

// Routes lists the entity screens in menu order.
func Routes() []Route {
	return []Route{
		{Prefix: IncomeRoute, Title: Incomes().Title},
		{Prefix: MoneyRoute, Title: Monies().Title},
	}
}

// Lookup finds the route registered under prefix.
func Lookup(prefix string) (Route, bool) {
	for _, r := range Routes() {
		if r.Prefix == prefix {
			return r, true
		}
	}
	return Route{}, false
}
