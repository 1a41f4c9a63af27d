package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"note-assistant/internal/contextutil"
	"note-assistant/internal/vault"
)

// NoteReader is the read side of the vault.
type NoteReader interface {
	Read(ctx context.Context, relPath string) (string, error)
	List(ctx context.Context) ([]vault.ScannedFile, error)
}

// NoteHandler serves markdown notes as rendered HTML pages, so a reply can be
// checked the way it will look in the editor.
type NoteHandler struct {
	notes    NoteReader
	parser   goldmark.Markdown
	template *template.Template
}

type notePageData struct {
	Title   string
	RelPath string
	Content template.HTML
	Notes   []vault.ScannedFile
}

var notePage = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · note-assistant</title>
  <style>
    body { font-family: -apple-system, 'Segoe UI', sans-serif; margin: 0 auto; padding: 2rem; max-width: 860px; line-height: 1.6; }
    header { border-bottom: 1px solid #ddd; margin-bottom: 1.5rem; }
    .meta { color: #666; font-size: 0.9rem; }
    hr { border: 0; border-top: 2px dashed #bbb; margin: 2rem 0; }
    table { border-collapse: collapse; }
    th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
    pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    {{if .RelPath}}<p class="meta">{{.RelPath}}</p>{{end}}
  </header>
  {{if .Notes}}<ul>{{range .Notes}}<li><a href="/notes/{{.RelPath}}">{{.RelPath}}</a></li>{{end}}</ul>{{end}}
  <article>{{.Content}}</article>
</body>
</html>`))

// NewNoteHandler creates a new handler for serving note files.
func NewNoteHandler(notes NoteReader) *NoteHandler {
	return &NoteHandler{
		notes: notes,
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithUnsafe(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: notePage,
	}
}

// ServeHTTP renders the requested note, or an index of notes when no path is given.
func (h *NoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	relPath, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, "invalid path encoding", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(relPath) == "" {
		h.serveIndex(w, r)
		return
	}

	content, err := h.notes.Read(ctx, relPath)
	switch {
	case errors.Is(err, vault.ErrInvalidPath):
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	case errors.Is(err, vault.ErrNoteNotFound):
		http.Error(w, "note not found", http.StatusNotFound)
		return
	case err != nil:
		logger.ErrorContext(ctx, "failed to read note", "rel_path", relPath, "error", err)
		http.Error(w, "failed to read note", http.StatusInternalServerError)
		return
	}

	htmlContent, err := h.renderMarkdown([]byte(content))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "rel_path", relPath, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}

	h.render(w, r, notePageData{
		Title:   inferTitle(relPath),
		RelPath: relPath,
		Content: template.HTML(htmlContent),
	})
}

func (h *NoteHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	files, err := h.notes.List(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list notes", "error", err)
		http.Error(w, "failed to list notes", http.StatusInternalServerError)
		return
	}

	h.render(w, r, notePageData{Title: "Notes", Notes: files})
}

func (h *NoteHandler) render(w http.ResponseWriter, r *http.Request, data notePageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to execute note template", "error", err)
	}
}

func (h *NoteHandler) renderMarkdown(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.parser.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

func inferTitle(rel string) string {
	base := path.Base(rel)
	if base == "." || base == "/" || base == "" {
		return "Note"
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
