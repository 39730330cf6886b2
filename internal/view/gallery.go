// Package view renders the gallery pages.
package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/msomdec/photo-gallery/internal/domain"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// GalleryPage renders the full gallery document.
func GalleryPage(photos []domain.Photo) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>Photo Gallery</title>`+
			`<script type="module" src="`+datastarScript+`"></script>`+
			`<style>#photo-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(160px,1fr));gap:8px}`+
			`#photo-grid img{width:100%;aspect-ratio:1;object-fit:cover}</style>`+
			`</head><body><main><h1>Photo Gallery</h1>`); err != nil {
			return err
		}
		if err := CaptureForm().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="photo-grid">`); err != nil {
			return err
		}
		if err := PhotoGrid(photos).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></main></body></html>`)
		return err
	})
}

// CaptureForm posts a camera shot and lets the server patch the grid.
func CaptureForm() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<form id="capture" enctype="multipart/form-data" `+
			`data-on-submit="@post('/gallery/capture', {contentType: 'form'})">`+
			`<input type="file" name="image" accept="image/*" capture="environment">`+
			`<button type="submit">Take photo</button></form>`+
			`<p id="capture-error" role="alert"></p>`)
		return err
	})
}

// PhotoGrid renders the photos newest first.
func PhotoGrid(photos []domain.Photo) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(photos) == 0 {
			_, err := io.WriteString(w, `<p class="empty">No photos yet.</p>`)
			return err
		}
		for _, p := range photos {
			if _, err := fmt.Fprintf(w, `<figure><img src="%s" alt="%s" loading="lazy"></figure>`,
				templ.EscapeString(p.WebviewPath), templ.EscapeString(p.Filepath)); err != nil {
				return err
			}
		}
		return nil
	})
}

// CaptureError renders a capture failure message.
func CaptureError(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(message))
		return err
	})
}
