package http

import (
	"html/template"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/entity"
	"ledger/internal/resources"
)

var templateFuncs = template.FuncMap{
	"join":   strings.Join,
	"pageNo": func(page int) int { return page + 1 },
}

// layoutData is embedded by every page.
type layoutData struct {
	Title  string
	Active string
	Routes []resources.Route
}

func newLayout(title, active string) layoutData {
	return layoutData{Title: title, Active: active, Routes: resources.Routes()}
}

type fieldView struct {
	Name      string
	Label     string
	Value     string
	InputType string
	Hidden    bool
	Required  bool
	Set       bool
}

type rowView struct {
	ID    string
	Cells []string
}

type listPage struct {
	layoutData
	Entity     string
	Columns    []string
	Rows       []rowView
	TotalCount int64
	Page       int
	Size       int
	Sort       []string
	PrevURL    string
	NextURL    string
}

type formPage struct {
	layoutData
	Entity string
	ID     string
	Fields []fieldView
	Errors []string
}

type detailPage struct {
	layoutData
	Entity string
	ID     string
	Fields []fieldView
}

type summaryView struct {
	Title  string
	Entity string
	Total  int64
	Recent []rowView
	Error  string
}

type dashboardPage struct {
	layoutData
	Summaries []summaryView
}

func inputType(kind entity.FieldKind) string {
	switch kind {
	case entity.KindInteger:
		return "number"
	case entity.KindID:
		return "hidden"
	default:
		return "text"
	}
}

// fieldsOf renders every field of a record.
func fieldsOf[T core.Identified](fields []entity.Field[T], record T) []fieldView {
	out := make([]fieldView, 0, len(fields))
	for _, f := range fields {
		v, ok := f.Get(record)
		out = append(out, fieldView{
			Name:      f.Name,
			Label:     f.Label,
			Value:     v,
			InputType: inputType(f.Kind),
			Hidden:    f.Kind == entity.KindID,
			Required:  f.Required,
			Set:       ok,
		})
	}
	return out
}

// formFields renders the raw values held by a form.
func formFields[T core.Identified](form *entity.Form[T]) []fieldView {
	values := form.Values()
	out := make([]fieldView, 0, len(form.Fields()))
	for _, f := range form.Fields() {
		_, ok := values[f.Name]
		out = append(out, fieldView{
			Name:      f.Name,
			Label:     f.Label,
			Value:     form.Get(f.Name),
			InputType: inputType(f.Kind),
			Hidden:    f.Kind == entity.KindID,
			Required:  f.Required,
			Set:       ok,
		})
	}
	return out
}

// columns lists the visible field labels.
func columns[T core.Identified](fields []entity.Field[T]) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Kind != entity.KindID {
			out = append(out, f.Label)
		}
	}
	return out
}

func rowOf[T core.Identified](fields []entity.Field[T], record T) rowView {
	row := rowView{}
	if id, ok := record.Identifier(); ok {
		row.ID = strconv.FormatInt(id, 10)
	}
	for _, f := range fields {
		if f.Kind == entity.KindID {
			continue
		}
		v, _ := f.Get(record)
		row.Cells = append(row.Cells, v)
	}
	return row
}
