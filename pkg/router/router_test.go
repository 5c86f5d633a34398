package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
)

type echoRequest struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
}

func echoHandler(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Name is required")
	}

	return &echoResponse{Greeting: "hello " + req.Name}, nil
}

func serve(t *testing.T, r *Router, req *http.Request) (int, map[string]any) {
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&body))
	return w.Result().StatusCode, body
}

func Test_Router_getBindsQuery(t *testing.T) {
	r := New(context.Background())
	GET(r, "/echo", echoHandler)

	status, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/echo?name=ana&count=3", nil))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["timestamp"])

	data := body["data"].(map[string]any)
	require.Equal(t, "hello ana", data["greeting"])
}

func Test_Router_postBindsBody(t *testing.T) {
	r := New(context.Background())
	POST(r, "/echo", echoHandler)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"bob"}`))
	status, body := serve(t, r, req)
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]any)
	require.Equal(t, "hello bob", data["greeting"])
}

func Test_Router_errorEnvelope(t *testing.T) {
	r := New(context.Background())
	POST(r, "/echo", echoHandler)

	status, body := serve(t, r, httptest.NewRequest(http.MethodPost, "/echo", nil))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Name is required", body["message"])

	// Wrong method gets the same envelope shape.
	status, body = serve(t, r, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, false, body["success"])
}

func Test_Router_branchMiddleware(t *testing.T) {
	r := New(context.Background())
	GET(r, "/public", echoHandler)

	branch := r.Branch()
	branch.Before(func(ctx context.Context) (context.Context, error) {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	})
	GET(branch, "/private", echoHandler)

	status, _ := serve(t, r, httptest.NewRequest(http.MethodGet, "/public?name=ana", nil))
	require.Equal(t, http.StatusOK, status)

	status, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/private?name=ana", nil))
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "You need to authenticate before", body["message"])
}
