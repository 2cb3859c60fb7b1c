package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const metricPrefix = "backendservices."

func (t *Transport) startSpan(ctx context.Context, desc OperationDescriptor) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, BackendServicesServiceName+"/"+desc.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.system", strings.TrimSpace(t.config.Transport)),
			attribute.String("rpc.service", BackendServicesServiceName),
			attribute.String("rpc.method", desc.Method),
			attribute.String("server.address", t.host),
			attribute.Bool("backendservices.long_running", desc.LongRunning),
		),
	)
}

func (t *Transport) observeCall(
	ctx context.Context,
	span trace.Span,
	startedAt time.Time,
	desc OperationDescriptor,
	err error,
) {
	if t == nil {
		return
	}
	operation := string(desc.Operation)
	status := "success"
	if err != nil {
		status = "failure"
	}
	duration := time.Since(startedAt)

	fields := map[string]any{
		"operation":   operation,
		"status":      status,
		"host":        t.host,
		"duration_ms": duration.Milliseconds(),
	}
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	if err != nil {
		fields["error"] = err.Error()
		if code := errorTextCode(err); code != "" {
			fields["error_code"] = code
			tags["error_code"] = code
		}
	}

	t.recordCounter(ctx, metricPrefix+operation+".total", 1, tags)
	t.recordHistogram(ctx, metricPrefix+operation+".duration_ms", float64(duration.Milliseconds()), tags)

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		} else {
			span.SetStatus(otelcodes.Ok, "")
		}
		span.End()
	}

	if err != nil {
		t.logError(ctx, operation+" failed", fields)
		return
	}
	t.logInfo(ctx, operation+" succeeded", fields)
}

func (t *Transport) observeAttempt(ctx context.Context, info AttemptInfo) {
	if t == nil || info.Err == nil {
		return
	}
	operation := string(info.Operation)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("attempt_failed", trace.WithAttributes(
			attribute.Int("attempt", info.Attempt),
			attribute.Bool("retrying", info.Retrying),
		))
	}
	if !info.Retrying {
		return
	}
	t.recordCounter(ctx, metricPrefix+operation+".retry", 1, map[string]string{"operation": operation})
	t.logWithLevel(ctx, "debug", operation+" retrying", map[string]any{
		"operation":    operation,
		"attempt":      info.Attempt,
		"max_attempts": info.MaxAttempts,
		"delay_ms":     info.Delay.Milliseconds(),
		"error":        info.Err.Error(),
	})
}

func errorTextCode(err error) string {
	var rich *goerrors.Error
	if errors.As(err, &rich) && rich != nil {
		return rich.TextCode
	}
	return ""
}

func (t *Transport) logInfo(ctx context.Context, message string, fields map[string]any) {
	t.logWithLevel(ctx, "info", message, fields)
}

func (t *Transport) logError(ctx context.Context, message string, fields map[string]any) {
	t.logWithLevel(ctx, "error", message, fields)
}

func (t *Transport) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if t == nil || t.logger == nil {
		return
	}
	logger := t.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (t *Transport) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if t == nil || t.metricsRecorder == nil {
		return
	}
	t.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (t *Transport) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if t == nil || t.metricsRecorder == nil {
		return
	}
	t.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
