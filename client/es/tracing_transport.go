package es

import (
	"fmt"
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TracingTransport wraps a RoundTripper and reports each elasticsearch
// request as an opentracing client span.
type TracingTransport struct {
	Transport http.RoundTripper
}

func (t *TracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	span, ctx := opentracing.StartSpanFromContext(req.Context(), fmt.Sprintf("es %s %s", req.Method, req.URL.Path))
	defer span.Finish()

	ext.SpanKind.Set(span, ext.SpanKindRPCClientEnum)
	ext.Component.Set(span, "elasticsearch")
	ext.HTTPMethod.Set(span, req.Method)
	ext.HTTPUrl.Set(span, req.URL.String())

	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	res, err := transport.RoundTrip(req.WithContext(ctx))
	if err != nil {
		ext.Error.Set(span, true)
		span.LogKV("error", err.Error())
		return res, err
	}

	ext.HTTPStatusCode.Set(span, uint16(res.StatusCode))
	if res.StatusCode >= http.StatusBadRequest {
		ext.Error.Set(span, true)
	}
	return res, nil
}
