// Package lambda serves an http.Handler from API Gateway HTTP API (v2)
// events.
package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

// Adapter replays API Gateway requests through an http.Handler.
type Adapter struct {
	proxy *httpadapter.HandlerAdapterV2
}

// NewAdapter wraps h.
func NewAdapter(h http.Handler) *Adapter {
	return &Adapter{proxy: httpadapter.NewV2(h)}
}

// Proxy is the Lambda entrypoint: it converts req, runs the handler and
// converts the buffered response back.
func (a *Adapter) Proxy(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return a.proxy.ProxyWithContext(ctx, req)
}
