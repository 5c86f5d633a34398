package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler and may extend the request context.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc always runs after the handler, even when a middleware failed.
type CloserFunc func(ctx context.Context, w http.ResponseWriter)

type Router struct {
	mux     *http.ServeMux
	baseCtx context.Context
	befores []MiddlewareFunc
	afters  []CloserFunc
}

// New creates a router over a base context holding the application state
// (configs, logger, db, token engine).
func New(ctx context.Context) *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		baseCtx: ctx,
	}

	r.After(handleResponse())
	return r
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(closer CloserFunc) {
	r.afters = append(r.afters, closer)
}

// Branch derives a router sharing the same mux but with an independent
// middleware chain. Routes registered on the branch see the chain as it is at
// call time plus whatever the branch adds.
func (r *Router) Branch() *Router {
	return &Router{
		mux:     r.mux,
		baseCtx: r.baseCtx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]CloserFunc{}, r.afters...),
	}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrap(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrap(r, http.MethodPost, handler))
}

func wrap[Request, Response any](
	router *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	befores := append([]MiddlewareFunc{}, router.befores...)
	afters := append([]CloserFunc{}, router.afters...)

	return func(w http.ResponseWriter, httpReq *http.Request) {
		ctx := xcontext.WithHTTPRequest(router.baseCtx, httpReq)
		ctx = xcontext.WithRequestHolder(ctx)

		func() {
			if httpReq.Method != method {
				xcontext.SetError(ctx, errorx.New(errorx.BadRequest, "Method not allowed"))
				return
			}

			for _, middleware := range befores {
				newCtx, err := middleware(ctx)
				if err != nil {
					xcontext.SetError(ctx, err)
					return
				}

				ctx = newCtx
			}

			var req Request
			var err error
			switch method {
			case http.MethodGet:
				err = bindQuery(httpReq, &req)
			case http.MethodPost:
				err = json.NewDecoder(httpReq.Body).Decode(&req)
				if errors.Is(err, io.EOF) {
					err = nil
				}
			}
			if err != nil {
				xcontext.SetError(ctx, errorx.New(errorx.BadRequest, "Cannot bind the request"))
				return
			}

			resp, err := handler(ctx, &req)
			if err != nil {
				xcontext.SetError(ctx, err)
				return
			}

			xcontext.SetResponse(ctx, resp)
		}()

		// Closers run in reverse registration order, the response writer
		// registered by New goes last.
		for i := len(afters) - 1; i >= 0; i-- {
			afters[i](ctx, w)
		}
	}
}
