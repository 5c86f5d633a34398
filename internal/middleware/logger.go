package middleware

import (
	"context"
	"net/http"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
)

// Logger is a closer, it sees the final outcome of the request.
func Logger() func(ctx context.Context, w http.ResponseWriter) {
	return func(ctx context.Context, w http.ResponseWriter) {
		httpReq := xcontext.HTTPRequest(ctx)
		if httpReq == nil {
			return
		}

		if err := xcontext.GetError(ctx); err != nil {
			xcontext.Logger(ctx).Warnf("%s %s: %v", httpReq.Method, httpReq.URL.Path, err)
			return
		}

		xcontext.Logger(ctx).Debugf("%s %s ok", httpReq.Method, httpReq.URL.Path)
	}
}
