package core

import (
	"context"
	"sort"
	"strconv"
	"time"
)

// forwardObservation is the telemetry of one Forward call. It never carries
// credentials or the access token.
type forwardObservation struct {
	requestID  string
	endpoint   string
	statusCode int
	startedAt  time.Time
	err        error
}

func (s *Service) observeForward(ctx context.Context, obs forwardObservation) {
	if s == nil {
		return
	}
	duration := time.Since(obs.startedAt)
	status := "success"
	if obs.err != nil {
		status = "failure"
	}

	tags := map[string]string{
		"operation":   OperationForward,
		"status":      status,
		"status_code": strconv.Itoa(obs.statusCode),
	}
	s.recordCounter(ctx, MetricForwardTotal, 1, tags)
	s.recordHistogram(ctx, MetricForwardDuration, float64(duration.Milliseconds()), tags)

	fields := map[string]any{
		"event_type":  OperationForward,
		"request_id":  obs.requestID,
		"endpoint":    obs.endpoint,
		"status":      status,
		"status_code": obs.statusCode,
		"duration_ms": duration.Milliseconds(),
	}
	if obs.err != nil {
		fields["error"] = ErrorMessage(obs.err)
		if mapped := MapError(obs.err); mapped != nil {
			fields["error_code"] = mapped.TextCode
		}
		s.logError(ctx, OperationForward+" failed", fields)
		return
	}
	s.logInfo(ctx, OperationForward+" succeeded", fields)
}

func (s *Service) logInfo(ctx context.Context, message string, fields map[string]any) {
	if logger, args := s.scopedLogger(ctx, fields); logger != nil {
		logger.Info(message, args...)
	}
}

func (s *Service) logError(ctx context.Context, message string, fields map[string]any) {
	if logger, args := s.scopedLogger(ctx, fields); logger != nil {
		logger.Error(message, args...)
	}
}

// scopedLogger attaches redacted fields either through WithFields or as
// key/value args, never both.
func (s *Service) scopedLogger(ctx context.Context, fields map[string]any) (Logger, []any) {
	if s == nil || s.logger == nil {
		return nil, nil
	}
	fields = RedactSensitiveMap(fields)
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		return fieldsLogger.WithFields(fields), nil
	}
	return logger, flattenFields(fields)
}

func (s *Service) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.IncCounter(ctx, name, value, cloneTags(tags))
}

func (s *Service) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.ObserveHistogram(ctx, name, value, cloneTags(tags))
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
