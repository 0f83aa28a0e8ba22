package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"taskboard/apierror"

	"github.com/sirupsen/logrus"
)

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil || status == http.StatusNoContent {
		return
	}
	json.NewEncoder(w).Encode(payload)
}

// ErrorWriter renders errors as {"error": ...}. Server-side failures are
// logged with their cause and reported to the client without it.
func ErrorWriter(log *logrus.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		apiErr := apierror.From(err)
		status := apiErr.Status()
		msg := apiErr.Message

		if status >= http.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}).WithError(err).Error("request failed")
			if apiErr.Kind == apierror.KindStorage || apiErr.Kind == apierror.KindInternal {
				msg = "Internal server error"
			}
		}

		writeJSON(w, status, errorBody{Error: msg, Fields: apiErr.Fields})
	}
}

// readBody returns the request body when it is a JSON object sent with a
// JSON content type, and "{}" otherwise.
func readBody(r *http.Request) (json.RawMessage, error) {
	empty := json.RawMessage("{}")
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") || r.Body == nil {
		return empty, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, apierror.BadRequest("Failed to read request body")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return empty, nil
	}
	return data, nil
}
