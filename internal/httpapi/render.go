package httpapi

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"example.com/todos-api/internal/todo"
)

type format int

const (
	formatJSON format = iota
	formatXML
	formatMarkdown
)

func parseFormat(s string) format {
	switch strings.ToLower(s) {
	case "xml":
		return formatXML
	case "md", "markdown":
		return formatMarkdown
	}
	return formatJSON
}

// requestFormat prefers a path suffix (/todos.xml) over ?format=, and
// falls back to JSON.
func requestFormat(r *http.Request) format {
	if ext, _ := r.Context().Value(middleware.URLFormatCtxKey).(string); ext != "" {
		return parseFormat(ext)
	}
	return parseFormat(r.URL.Query().Get("format"))
}

func (f format) contentType() string {
	switch f {
	case formatXML:
		return "application/xml; charset=utf-8"
	case formatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "application/json"
}

type xmlTodos struct {
	XMLName xml.Name    `xml:"todos"`
	Todos   []todo.Todo `xml:"todo"`
}

type xmlTodo struct {
	XMLName xml.Name `xml:"todo"`
	todo.Todo
}

// renderList writes a collection. JSON listings only carry id and title.
func renderList(w http.ResponseWriter, f format, items []todo.Todo) error {
	switch f {
	case formatXML:
		return writeXML(w, http.StatusOK, xmlTodos{Todos: items})
	case formatMarkdown:
		return writeMarkdown(w, http.StatusOK, markdownList(items))
	}
	summaries := make([]todo.Summary, 0, len(items))
	for _, t := range items {
		summaries = append(summaries, t.Summary())
	}
	return writeJSON(w, http.StatusOK, summaries)
}

func renderTodo(w http.ResponseWriter, status int, f format, t todo.Todo) error {
	switch f {
	case formatXML:
		return writeXML(w, status, xmlTodo{Todo: t})
	case formatMarkdown:
		return writeMarkdown(w, status, markdownTodo(t))
	}
	return writeJSON(w, status, t)
}

func markdownList(items []todo.Todo) string {
	var b strings.Builder
	b.WriteString("# Todos\n\n")
	for _, t := range items {
		fmt.Fprintf(&b, "- [%d] %s\n", t.ID, t.Title)
	}
	return b.String()
}

func markdownTodo(t todo.Todo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "**Due:** %s\n", t.Due)
	if t.Notes != "" {
		fmt.Fprintf(&b, "**Notes:** %s\n", t.Notes)
	}
	if !t.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "\n**Created:** %s\n", markdownTime(t.CreatedAt))
	}
	if !t.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "**Updated:** %s\n", markdownTime(t.UpdatedAt))
	}
	return b.String()
}

func markdownTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", formatJSON.contentType())
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeXML(w http.ResponseWriter, status int, v any) error {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", formatXML.contentType())
	w.WriteHeader(status)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	_, err = w.Write(append(body, '\n'))
	return err
}

func writeMarkdown(w http.ResponseWriter, status int, body string) error {
	w.Header().Set("Content-Type", formatMarkdown.contentType())
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	return err
}
