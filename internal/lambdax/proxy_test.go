package lambdax

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(method, path, query, body string) events.APIGatewayV2HTTPRequest {
	ev := events.APIGatewayV2HTTPRequest{
		RawPath:        path,
		RawQueryString: query,
		Body:           body,
		Headers:        map[string]string{"content-type": "application/json"},
	}
	ev.RequestContext.HTTP.Method = method
	ev.RequestContext.HTTP.Path = path
	ev.RequestContext.DomainName = "api.example.com"
	ev.RequestContext.RequestID = "req-123"
	return ev
}

func echoEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Any("/v1/images/:image_id", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusCreated, gin.H{
			"method":     c.Request.Method,
			"image_id":   c.Param("image_id"),
			"query":      c.Query("download"),
			"body":       string(body),
			"request_id": c.GetHeader("X-Request-Id"),
		})
	})
	return r
}

func TestProxy(t *testing.T) {
	h := Proxy(echoEngine())

	resp, err := h(context.Background(), event(http.MethodPost, "/v1/images/i1", "download=1", `{"x":1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"method":"POST","image_id":"i1","query":"1","body":"{\"x\":1}","request_id":"req-123"}`, resp.Body)
}

func TestProxyUnknownRoute(t *testing.T) {
	resp, err := Proxy(echoEngine())(context.Background(), event(http.MethodGet, "/nope", "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWithRequestID(t *testing.T) {
	ev := WithRequestID(event(http.MethodGet, "/", "", ""))
	assert.Equal(t, "req-123", ev.Headers["x-request-id"])
	assert.Equal(t, "application/json", ev.Headers["content-type"])

	ev = event(http.MethodGet, "/", "", "")
	ev.Headers["X-Request-ID"] = "client-id"
	ev = WithRequestID(ev)
	assert.Equal(t, "client-id", ev.Headers["X-Request-ID"])
	assert.NotContains(t, ev.Headers, "x-request-id")

	ev = event(http.MethodGet, "/", "", "")
	ev.RequestContext.RequestID = ""
	ev = WithRequestID(ev)
	assert.NotContains(t, ev.Headers, "x-request-id")
}

func TestWithRequestIDDoesNotMutateInput(t *testing.T) {
	orig := event(http.MethodGet, "/", "", "")
	_ = WithRequestID(orig)
	assert.NotContains(t, orig.Headers, "x-request-id")
}
