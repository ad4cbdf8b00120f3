// Package web embeds the page templates and the static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// Static holds the assets served under /static/.
var Static = sub("static")

// Templates holds the layout and page templates.
var Templates = sub("templates")

func sub(dir string) fs.FS {
	s, err := fs.Sub(content, dir)
	if err != nil {
		panic("web: " + err.Error())
	}
	return s
}
