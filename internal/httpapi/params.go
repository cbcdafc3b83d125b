package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"example.com/todos-api/internal/todo"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidJSON = errors.New("request body is not valid JSON")
	errInvalidBody = errors.New("request body could not be parsed")
)

// readParams merges the Todo fields of a request. A key sent in the JSON
// body wins over the same key in a form body, which wins over the query
// string; lower-priority channels only fill keys nobody else sent.
func readParams(w http.ResponseWriter, r *http.Request) (todo.Params, error) {
	var p todo.Params
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		body, err := decodeJSONObject(r.Body)
		if err != nil {
			return todo.Params{}, err
		}
		for k, v := range body {
			if f := p.Lookup(k); f != nil {
				*f = jsonField(v)
			}
		}
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return todo.Params{}, fmt.Errorf("%w: %w", errInvalidBody, err)
		}
		fill(&p, r.PostForm)
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return todo.Params{}, fmt.Errorf("%w: %w", errInvalidBody, err)
		}
		fill(&p, r.PostForm)
	}

	fill(&p, r.URL.Query())
	return p, nil
}

func decodeJSONObject(body io.Reader) (map[string]any, error) {
	var m map[string]any
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil, nil
		case errors.As(err, &tooBig):
			return nil, err
		}
		return nil, errInvalidJSON
	}
	return m, nil
}

func jsonField(v any) todo.Field {
	switch v := v.(type) {
	case nil:
		return todo.Null()
	case string:
		return todo.Value(v)
	case json.Number:
		return todo.Value(v.String())
	case bool:
		return todo.Value(strconv.FormatBool(v))
	default:
		b, _ := json.Marshal(v)
		return todo.Value(string(b))
	}
}

func fill(p *todo.Params, values url.Values) {
	for k, vs := range values {
		if f := p.Lookup(k); f != nil && !f.Set && len(vs) > 0 {
			*f = todo.Value(vs[0])
		}
	}
}
