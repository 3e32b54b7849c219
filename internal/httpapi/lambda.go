package httpapi

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/tckz/visitor-counter/internal/counter"
	"go.uber.org/zap"
)

type LambdaFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// NewLambdaHandler serves API Gateway proxy events with the same contract as
// Handler. Failures are reported in the response, never as a Lambda error.
func NewLambdaHandler(svc Incrementer, opts ...Option) LambdaFunc {
	o := newOptions(opts)
	logger := o.logger

	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		logger.Info("Received event",
			zap.String("method", req.HTTPMethod),
			zap.String("path", req.Path),
			zap.Any("queryStringParameters", req.QueryStringParameters),
			zap.String("requestId", req.RequestContext.RequestID),
		)

		headers := make(map[string]string, len(responseHeaders))
		for k, v := range responseHeaders {
			headers[k] = v
		}

		if req.HTTPMethod == http.MethodOptions {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: headers}, nil
		}

		id, ok := req.QueryStringParameters[visitorParam]
		if !ok {
			id = counter.DefaultVisitorID
		}

		status, body := increment(ctx, svc, logger, id)
		return events.APIGatewayProxyResponse{
			StatusCode: status,
			Headers:    headers,
			Body:       string(body),
		}, nil
	}
}
