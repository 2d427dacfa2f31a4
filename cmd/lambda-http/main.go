package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.uber.org/zap"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

type proxy interface {
	ProxyWithContext(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)
}

// coldStart builds the router once per execution environment. A failed build
// is not cached; the next invocation tries again.
type coldStart struct {
	mu    sync.Mutex
	proxy proxy
	build func() (proxy, error)
}

func (s *coldStart) get() (proxy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proxy != nil {
		return s.proxy, nil
	}
	p, err := s.build()
	if err != nil {
		return nil, err
	}
	s.proxy = p
	return p, nil
}

func (s *coldStart) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p, err := s.get()
	if err != nil {
		telemetry.L().Error("bootstrap failed",
			zap.String("aws_request_id", req.RequestContext.RequestID),
			zap.Error(err))
		body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{
			Code:    "unavailable",
			Message: "service is starting, retry shortly",
		}})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusServiceUnavailable,
			Body:       string(body),
			Headers:    map[string]string{"Content-Type": "application/json", "Retry-After": "1"},
		}, nil
	}
	return p.ProxyWithContext(ctx, req)
}

func buildProxy() (proxy, error) {
	cfg := config.Load()
	telemetry.Init(telemetry.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat})
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return nil, err
	}
	return ginadapter.NewV2(app.Router), nil
}

func main() {
	s := &coldStart{build: buildProxy}
	lambda.Start(s.handle)
}
