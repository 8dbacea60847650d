package server

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

// HandleLambda serves an API Gateway HTTP API (payload v2) event through the
// same routes as the HTTP server. Non UTF-8 response bodies come back base64
// encoded and Set-Cookie headers are moved to Cookies.
func (s *Server) HandleLambda(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return s.lambda.ProxyWithContext(ctx, event)
}
