package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"maintkv/internal/config"
	"maintkv/internal/testutil"
)

const testPassword = "admin-secret"

// newTestServer 创建连接到内存 Redis 的服务和已注册路由的引擎
func newTestServer(t testing.TB) (*Server, *gin.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, client := testutil.NewRedis(t)
	srv, err := NewServer(client, config.BuiltinDefaults(), testPassword, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	r := gin.New()
	srv.SetupRoutes(r)
	return srv, r, mr
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testPassword)
	return req
}

func serveHTTP(t testing.TB, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	return testutil.ServeHTTP(t, h, req)
}

func mustParseAPIResponse[T any](t testing.TB, body []byte) testutil.APIResponse[T] {
	t.Helper()
	return testutil.MustParseAPIResponse[T](t, body)
}
