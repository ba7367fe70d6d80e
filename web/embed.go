// Package web embeds the static viewer page.
package web

import "embed"

// ViewerFS embeds the single-page Leaflet viewer served under /viewer/.
//
//go:embed viewer/*
var ViewerFS embed.FS
