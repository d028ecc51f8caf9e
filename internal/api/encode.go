package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/starford/scenaview/internal/apperr"
)

const (
	contentTypeJSON    = "application/json; charset=utf-8"
	contentTypeMsgpack = "application/msgpack"

	maxBodyBytes = 1 << 20
)

// wantsMsgpack reports whether the client prefers msgpack over JSON.
func wantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case contentTypeMsgpack, "application/x-msgpack":
			return true
		case "application/json":
			return false
		}
	}
	return false
}

// respond encodes v as msgpack or JSON depending on the Accept header.
func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if !wantsMsgpack(r) {
		writeJSON(w, status, v)
		return
	}
	body, err := msgpack.Marshal(v)
	if err != nil {
		slog.Error("msgpack encode failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// decode reads a JSON or msgpack request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var err error
	if mt == contentTypeMsgpack || mt == "application/x-msgpack" {
		err = msgpack.NewDecoder(r.Body).Decode(v)
	} else {
		err = json.NewDecoder(r.Body).Decode(v)
	}
	if err != nil {
		return fmt.Errorf("%w: invalid body: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

type errResponse struct {
	Error string `json:"error" msgpack:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respond(w, r, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidInput):
		respond(w, r, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNoSelection):
		respond(w, r, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, context.Canceled):
		slog.Debug(op+" cancelled", slog.String("error", err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		respond(w, r, http.StatusInternalServerError, errorBody("internal error"))
	}
}
