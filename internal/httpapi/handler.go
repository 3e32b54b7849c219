// Package httpapi exposes the counter as an HTTP-triggered function.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tckz/visitor-counter/internal/counter"
	"go.uber.org/zap"
)

const visitorParam = "visitor"

var responseHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type",
}

type Incrementer interface {
	IncrementVisitor(ctx context.Context, id string) (json.Number, error)
}

var _ Incrementer = (*counter.Service)(nil)

type options struct {
	logger *zap.Logger
}

type Option func(o *options)

func WithLogger(zl *zap.Logger) Option {
	return Option(func(o *options) {
		o.logger = zl
	})
}

func newOptions(opts []Option) options {
	options := options{
		logger: zap.NewNop(),
	}
	for _, e := range opts {
		e(&options)
	}
	return options
}

type countResponse struct {
	VisitorCount json.Number `json:"visitorCount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// increment runs one invocation and returns the status code and JSON body.
func increment(ctx context.Context, svc Incrementer, logger *zap.Logger, id string) (int, []byte) {
	n, err := svc.IncrementVisitor(ctx, id)
	if err != nil {
		logger.Error("Error updating visitor count", zap.String("visitor", id), zap.Error(err))
		return errorBody(err.Error())
	}

	b, err := json.Marshal(countResponse{VisitorCount: n})
	if err != nil {
		logger.Error("json.Marshal", zap.Error(err))
		return errorBody(err.Error())
	}
	return http.StatusOK, b
}

func errorBody(msg string) (int, []byte) {
	b, _ := json.Marshal(errorResponse{Error: msg})
	return http.StatusInternalServerError, b
}

var _ http.Handler = (*Handler)(nil)

type Handler struct {
	svc    Incrementer
	logger *zap.Logger
}

func NewHandler(svc Incrementer, opts ...Option) *Handler {
	o := newOptions(opts)
	return &Handler{svc: svc, logger: o.logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Received event",
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
		zap.String("remoteAddr", r.RemoteAddr),
	)

	for k, v := range responseHeaders {
		w.Header().Set(k, v)
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	id := counter.DefaultVisitorID
	if vs, ok := r.URL.Query()[visitorParam]; ok && len(vs) > 0 {
		id = vs[0]
	}

	status, body := increment(r.Context(), h.svc, h.logger, id)
	w.WriteHeader(status)
	w.Write(body)
}
