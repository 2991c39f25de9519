package rmp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// the directory's graphql endpoint sits behind a fixed shared
// credential, not a per-user login
const authorizationHeader = "Basic dGVzdDp0ZXN0"

func (c *Client) graphql(ctx context.Context, name, query string, variables any, output any) error {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("graphql:%s", name))
	defer span.End()

	if serialized, err := json.Marshal(variables); err == nil {
		span.SetAttributes(attribute.String("variables", string(serialized)))
	}

	body := struct {
		Query     string `json:"query"`
		Variables any    `json:"variables"`
	}{
		Query:     query,
		Variables: variables,
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetHeader("authorization", authorizationHeader).
		SetBody(body).
		Post("/graphql")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return err
	}
	if res.IsError() {
		err := fmt.Errorf("graphql endpoint returned %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var result struct {
		Data json.RawMessage `json:"data"`
	}
	err = json.Unmarshal(res.Body(), &result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse json response")
		return err
	}
	err = json.Unmarshal(result.Data, output)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse data object")
		return err
	}
	return nil
}
