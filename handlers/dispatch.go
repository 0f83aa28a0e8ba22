package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"taskboard/apierror"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/uploads"

	"github.com/go-chi/chi/v5"
)

// Request is everything a handler may look at: integer path params, the
// authenticated user (nil on public routes) and the decoded JSON body.
type Request struct {
	Params map[string]uint
	User   *models.User
	Body   json.RawMessage

	raw *http.Request
}

// HandlerFunc returns the status code and payload to serialize.
type HandlerFunc func(ctx context.Context, req *Request) (int, any, error)

type Route struct {
	Method  string
	Pattern string
	Public  bool
	Handle  HandlerFunc
}

var paramPattern = regexp.MustCompile(`\{(\w+):`)

// paramNames lists the {name:regexp} placeholders of a chi pattern.
func paramNames(pattern string) []string {
	var names []string
	for _, m := range paramPattern.FindAllStringSubmatch(pattern, -1) {
		names = append(names, m[1])
	}
	return names
}

// Decode unmarshals the body into v. Type mismatches are validation errors.
func (req *Request) Decode(v any) error {
	if err := json.Unmarshal(req.Body, v); err != nil {
		return apierror.Validation(apierror.CodeInvalidBody, "Invalid request body")
	}
	return nil
}

// File returns the multipart file stored under name. The returned func
// releases it.
func (req *Request) File(name string) (uploads.File, func(), error) {
	noop := func() {}
	if req.raw == nil {
		return uploads.File{}, noop, errFileRequired()
	}

	file, header, err := req.raw.FormFile(name)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return uploads.File{
			Name:    header.Filename,
			Size:    header.Size,
			Content: file,
		}, func() { file.Close() }, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return uploads.File{}, noop, errFileRequired()
	case errors.As(err, &tooLarge):
		return uploads.File{}, noop, apierror.Validation(apierror.CodeTooLarge, "File exceeds maximum size")
	default:
		return uploads.File{Err: err}, noop, nil
	}
}

// serve adapts a route to net/http.
func (rt Route) serve(writeError func(http.ResponseWriter, *http.Request, error), maxBody int64) http.HandlerFunc {
	names := paramNames(rt.Pattern)
	return func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]uint, len(names))
		for _, name := range names {
			id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 0)
			if err != nil {
				writeError(w, r, errNotFound())
				return
			}
			params[name] = uint(id)
		}

		if maxBody > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		body, err := readBody(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		req := &Request{
			Params: params,
			User:   middleware.GetUserFromContext(r.Context()),
			Body:   body,
			raw:    r,
		}

		status, payload, err := rt.Handle(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, status, payload)
	}
}

func errNotFound() error {
	return apierror.NotFound("Not found")
}

func errFileRequired() error {
	return apierror.Validation(apierror.CodeMissingFields, "Image file is required")
}
