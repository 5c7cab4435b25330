// Package web embeds the static application shell so the binary is
// self-contained and the asset cache always has an origin to install from.
package web

import (
	"embed"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

// StaticFS embeds static assets (html/css/js/manifest).
//
//go:embed static/*
var StaticFS embed.FS

// Manifest lists every shell asset the offline cache installs up front.
var Manifest = []string{
	"/",
	"/index.html",
	"/style.css",
	"/app.js",
	"/manifest.json",
}

// Handler serves the embedded assets directly. http.FileServer is avoided
// because its /index.html redirect turns install-time fetches into 301s.
func Handler() http.Handler {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || name == "." {
			name = "index.html"
		}
		data, err := fs.ReadFile(sub, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		_, _ = w.Write(data)
	})
}
