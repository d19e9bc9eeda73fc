// hookchat - AWS Lambda handler
// Serves the web chat relay behind API Gateway. Each invocation is adapted
// onto the same http.Handler the long-running `hookchat serve` uses.
//
// Environment variables:
//   HOOKCHAT_CONFIG_JSON   - Full config JSON (alternative to config file)
//   HOOKCHAT_CONFIG_PATH   - Config file path (default: config.json)
//   HOOKCHAT_WEBHOOK_URL   - Webhook URL (overrides config)

package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/sipeed/hookchat/pkg/channels"
	"github.com/sipeed/hookchat/pkg/config"
	"github.com/sipeed/hookchat/pkg/logger"
	"github.com/sipeed/hookchat/pkg/webhook"
)

var (
	relay    *channels.WebChatChannel
	handle   http.Handler
	initOnce sync.Once
	initErr  error
)

func initialize() error {
	initOnce.Do(func() {
		initErr = doInit()
	})
	return initErr
}

func doInit() error {
	configPath := os.Getenv("HOOKCHAT_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Lambda captures stdout/stderr into CloudWatch; keep it JSON.
	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Output: os.Stderr}); err != nil {
		return err
	}

	relay, err = channels.NewWebChatChannel(cfg, webhook.NewFromConfig(cfg))
	if err != nil {
		return err
	}
	handle = relay.Handler()

	logger.InfoCF("lambda", "Lambda initialized", map[string]interface{}{"webhook": cfg.Webhook.URL})
	return nil
}

// toHTTPRequest rebuilds the API Gateway proxy event as an *http.Request.
func toHTTPRequest(ctx context.Context, request events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding body: %w", err)
		}
		body = decoded
	}

	u := url.URL{Path: request.Path}
	if u.Path == "" {
		u.Path = "/"
	}
	q := url.Values{}
	for k, vs := range request.MultiValueQueryStringParameters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, v := range request.QueryStringParameters {
		if _, ok := q[k]; !ok {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, request.HTTPMethod, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range request.Headers {
		req.Header.Set(k, v)
	}
	req.RemoteAddr = request.RequestContext.Identity.SourceIP
	return req, nil
}

func toProxyResponse(rec *httptest.ResponseRecorder) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(rec.Header()))
	for k, vs := range rec.Header() {
		headers[k] = strings.Join(vs, ",")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: rec.Code,
		Headers:    headers,
		Body:       rec.Body.String(),
	}
}

func serve(ctx context.Context, h http.Handler, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	req, err := toHTTPRequest(ctx, request)
	if err != nil {
		logger.WarnCF("lambda", "Bad request", map[string]interface{}{"error": err.Error()})
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return toProxyResponse(rec)
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if err := initialize(); err != nil {
		logger.ErrorCF("lambda", "Init error", map[string]interface{}{"error": err.Error()})
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	// No background sweeper runs here; a warm container expires
	// conversations as invocations arrive.
	if n := relay.MaybeSweep(); n > 0 {
		logger.DebugCF("lambda", "Expired webchat sessions", map[string]interface{}{"count": n})
	}
	return serve(ctx, handle, request), nil
}

func main() {
	lambda.Start(handler)
}
