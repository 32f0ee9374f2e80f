package inbound

import (
	"context"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler adapts the pipeline to API Gateway proxy events, the payload
// shape Netlify and AWS Lambda functions receive.
type LambdaHandler struct {
	pipeline *Pipeline
}

func NewLambdaHandler(pipeline *Pipeline) *LambdaHandler {
	return &LambdaHandler{pipeline: pipeline}
}

func (h *LambdaHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var pipeline *Pipeline
	if h != nil {
		pipeline = h.pipeline
	}
	response := pipeline.Handle(ctx, Request{
		Method:    event.HTTPMethod,
		Query:     eventQuery(event),
		RequestID: event.RequestContext.RequestID,
	})
	return events.APIGatewayProxyResponse{
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
		Body:       string(response.Body),
	}, nil
}

// eventQuery prefers the multi-value map, which API Gateway fills alongside
// the single-value one.
func eventQuery(event events.APIGatewayProxyRequest) url.Values {
	values := url.Values{}
	for key, items := range event.MultiValueQueryStringParameters {
		for _, item := range items {
			values.Add(key, item)
		}
	}
	for key, item := range event.QueryStringParameters {
		if _, ok := values[key]; !ok {
			values.Set(key, item)
		}
	}
	return values
}
