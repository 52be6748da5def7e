// Package lambdax serves the gin router behind API Gateway HTTP APIs
// (payload format 2.0).
package lambdax

import (
	"context"
	"strings"

	"github.com/kylejryan/image-upload-service/internal/server"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

// Handler is the function signature passed to lambda.Start.
type Handler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// Proxy adapts engine so it can be started with lambda.Start.
func Proxy(engine *gin.Engine) Handler {
	adapter := ginadapter.NewV2(engine)
	return func(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return adapter.ProxyWithContext(ctx, WithRequestID(ev))
	}
}

// WithRequestID copies the API Gateway request id into the X-Request-Id
// header unless the caller already sent one.
func WithRequestID(ev events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPRequest {
	id := ev.RequestContext.RequestID
	if id == "" || headerLookup(ev.Headers, server.RequestIDHeader) != "" {
		return ev
	}
	headers := make(map[string]string, len(ev.Headers)+1)
	for k, v := range ev.Headers {
		headers[k] = v
	}
	headers[strings.ToLower(server.RequestIDHeader)] = id
	ev.Headers = headers
	return ev
}

// headerLookup returns the value of a header key from a map, ignoring case.
func headerLookup(h map[string]string, key string) string {
	lk := strings.ToLower(key)
	for k, v := range h {
		if strings.ToLower(k) == lk {
			return v
		}
	}
	return ""
}
