package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// loggingProvider logs one structured line per request.
type loggingProvider struct {
	inner  Provider
	logger *zap.Logger
}

// WithLogging wraps p so every Generate call is logged with model, latency,
// token usage and outcome.
func WithLogging(p Provider, logger *zap.Logger) Provider {
	return &loggingProvider{inner: p, logger: logger.Named("llm")}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("model", l.inner.ModelID()),
		zap.Duration("latency", time.Since(start)),
	}
	if req.Schema != nil {
		fields = append(fields, zap.String("schema", req.Schema.Name))
	}
	if resp != nil {
		fields = append(fields,
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
			zap.String("stop_reason", resp.StopReason),
		)
	}
	if err != nil {
		l.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	l.logger.Debug("llm request", fields...)
	return resp, nil
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}
