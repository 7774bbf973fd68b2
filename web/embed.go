// Package web holds the templates and static assets of the ledger frontend.
package web

import "embed"

// TemplatesFS embeds the page templates, parsed once at server start.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the notification script.
//
//go:embed static/*
var StaticFS embed.FS
