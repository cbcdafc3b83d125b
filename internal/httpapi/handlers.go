package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/todos-api/internal/service"
	"example.com/todos-api/internal/stringsx"
	"example.com/todos-api/internal/todo"
)

const (
	msgRouteNotFound    = "Route does not exist"
	msgNotFound         = "Todo item not found"
	msgConflict         = "A todo with this title and due date already exists"
	msgMalformedDate    = "Due Date must be an ISO 8601 String: YYYY-MM-DD"
	msgMissingCreate    = "You must provide `title` and `due` as a) QueryString parameters, b) form-data or c) JSON in the request body. The choice is yours."
	msgMissingReplace   = "You must include all fields for a PUT: `title`, `due` and `notes` must be present"
	msgModifyCollection = "You cannot modify the collection directly"
	msgDeleteCollection = "You cannot delete the collection"
	msgPostObject       = "You cannot POST to this object"
	msgNotSaved         = "Todo could not be saved"
	msgNotDeleted       = "Todo could not be deleted"
	msgNotListed        = "Todos could not be loaded"
	msgNotLoaded        = "Todo could not be loaded"
	msgInvalidJSON      = "Request body is not valid JSON"
	msgInvalidBody      = "Request body could not be parsed"
	msgTooLarge         = "Request body is too large"

	msgTeapot = "I'm a teapot and I refuse to brew coffee. Learn more: https://en.wikipedia.org/wiki/Hyper_Text_Coffee_Pot_Control_Protocol"
	teapotArt = `     ;,'
 _o_    ;--,
( o ) __|  _)
 '--` + "`" + `(___/
`
)

const DefaultInfoHeader = "Bish bosh bash"

type Options struct {
	// InfoHeader is sent as X-Info on every response.
	InfoHeader string
	Logger     *slog.Logger
}

type Handlers struct {
	svc  *service.Service
	info string
	log  *slog.Logger
}

func NewHandlers(svc *service.Service, opts Options) *Handlers {
	h := &Handlers{svc: svc, info: opts.InfoHeader, log: opts.Logger}
	if h.info == "" {
		h.info = DefaultInfoHeader
	}
	if h.log == nil {
		h.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(h.accessLog)
	r.Use(instrument)
	r.Use(middleware.Recoverer)
	r.Use(h.commonHeaders)
	r.Use(allowOptions)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.URLFormat)
	r.Use(middleware.GetHead)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, msgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" is not allowed here")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Put("/", disallow("GET, POST, OPTIONS", msgModifyCollection))
		r.Patch("/", disallow("GET, POST, OPTIONS", msgModifyCollection))
		r.Delete("/", disallow("GET, POST, OPTIONS", msgDeleteCollection))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.replace)
			r.Patch("/", h.patch)
			r.Delete("/", h.delete)
			r.Post("/", disallow("GET, PUT, PATCH, DELETE, OPTIONS", msgPostObject))
		})
	})

	return r
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	f := requestFormat(r)
	proj := todo.ProjectFull
	if f == formatJSON {
		proj = todo.ProjectSummary
	}

	items, err := h.svc.List(r.Context(), proj)
	if err != nil {
		h.fail(w, r, err, msgNotListed)
		return
	}
	_ = renderList(w, f, items)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	p, err := readParams(w, r)
	if err != nil {
		h.fail(w, r, err, msgNotSaved)
		return
	}

	// Easter egg: a teapot refuses before anything else is looked at.
	if p.Title.Present() && stringsx.ContainsFold(p.Title.Value, "teapot") {
		writeTeapot(w)
		return
	}

	t, err := h.svc.Create(r.Context(), p)
	if err != nil {
		h.fail(w, r, err, msgNotSaved)
		return
	}
	w.Header().Set("Location", "/todos/"+strconv.FormatInt(t.ID, 10))
	_ = renderTodo(w, http.StatusCreated, requestFormat(r), t)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgNotLoaded)
		return
	}
	_ = renderTodo(w, http.StatusOK, requestFormat(r), t)
}

func (h *Handlers) replace(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	p, err := readParams(w, r)
	if err != nil {
		h.fail(w, r, err, msgNotSaved)
		return
	}

	t, err := h.svc.Replace(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, err, msgNotSaved)
		return
	}
	_ = renderTodo(w, http.StatusOK, requestFormat(r), t)
}

func (h *Handlers) patch(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	p, err := readParams(w, r)
	if err != nil {
		h.fail(w, r, err, msgNotSaved)
		return
	}

	t, err := h.svc.Patch(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, err, msgNotSaved)
		return
	}
	_ = renderTodo(w, http.StatusOK, requestFormat(r), t)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, msgNotDeleted)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// todoID parses the {id} segment. Ids that are not positive integers can
// never exist, so they are reported like any other unknown id.
func todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return id, true
}

func disallow(allow, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		writeError(w, http.StatusMethodNotAllowed, msg)
	}
}

// fail maps err onto a response. Errors outside the todo taxonomy are
// storage failures: they are logged and answered with fallback.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		missing *todo.MissingFieldsError
		invalid *todo.ValidationError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, todo.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, todo.ErrConflict):
		writeError(w, http.StatusConflict, msgConflict)
	case errors.Is(err, todo.ErrMalformedDate):
		writeError(w, http.StatusUnprocessableEntity, msgMalformedDate)
	case errors.As(err, &missing):
		msg := msgMissingCreate
		if missing.Op == todo.OpReplace {
			msg = msgMissingReplace
		}
		writeError(w, http.StatusUnprocessableEntity, msg)
	case errors.As(err, &invalid):
		writeError(w, http.StatusUnprocessableEntity, "Validation failed: "+strings.Join(invalid.Messages, ", "))
	case errors.As(err, &tooBig):
		writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
	case errors.Is(err, errInvalidJSON):
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
	case errors.Is(err, errInvalidBody):
		writeError(w, http.StatusBadRequest, msgInvalidBody)
	default:
		h.log.Error("storage failure",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

type errorBody struct {
	ErrorMessage string `json:"error_message"`
}

type teapotBody struct {
	ErrorMessage string `json:"error_message"`
	Teapot       string `json:"teapot"`
}

// writeError always answers in JSON, whatever format was requested.
func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, errorBody{ErrorMessage: msg})
}

func writeTeapot(w http.ResponseWriter) {
	w.Header().Set("X-Teapot", "Short and stout")
	_ = writeJSON(w, http.StatusTeapot, teapotBody{ErrorMessage: msgTeapot, Teapot: teapotArt})
}
