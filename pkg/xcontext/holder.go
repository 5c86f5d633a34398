package xcontext

import "context"

// requestHolder carries the response and error of a request so that closers
// running after the handler can observe them. The router installs one holder
// per request.
type requestHolder struct {
	resp any
	err  error
}

func WithRequestHolder(ctx context.Context) context.Context {
	return context.WithValue(ctx, responseKey{}, &requestHolder{})
}

func SetResponse(ctx context.Context, resp any) {
	if holder, ok := ctx.Value(responseKey{}).(*requestHolder); ok {
		holder.resp = resp
	}
}

func GetResponse(ctx context.Context) any {
	if holder, ok := ctx.Value(responseKey{}).(*requestHolder); ok {
		return holder.resp
	}

	return nil
}

func SetError(ctx context.Context, err error) {
	if holder, ok := ctx.Value(responseKey{}).(*requestHolder); ok {
		holder.err = err
	}
}

func GetError(ctx context.Context) error {
	if holder, ok := ctx.Value(responseKey{}).(*requestHolder); ok {
		return holder.err
	}

	return nil
}
