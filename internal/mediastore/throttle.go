package mediastore

import (
	"context"
	"log/slog"
	"time"

	"socialhub/internal/middleware"
	"socialhub/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// Instrumented wraps a Store with a token bucket shared by all calls to
// the media host, tracing spans and upload/delete metrics.
type Instrumented struct {
	next    Store
	limiter *rate.Limiter
}

// NewInstrumented wraps next. A non-positive perSecond disables throttling.
func NewInstrumented(next Store, perSecond float64, burst int) *Instrumented {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Instrumented{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (s *Instrumented) Upload(ctx context.Context, f File) (Media, error) {
	span, ctx := observability.StartMediaSpan(ctx, "upload",
		attribute.String("media.content_type", f.ContentType),
		attribute.Int64("media.size", f.Size),
	)
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		span.SetError(err)
		observability.MediaUploads.WithLabelValues(observability.ResultFailure).Inc()
		return Media{}, err
	}

	start := time.Now()
	m, err := s.next.Upload(ctx, f)
	observability.MediaUploads.WithLabelValues(observability.ResultLabel(err)).Inc()
	if err != nil {
		span.SetError(err)
		middleware.Logger.WarnContext(ctx, "media upload failed",
			slog.String("filename", f.Filename),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return Media{}, err
	}
	span.AddAttributes(attribute.String("media.id", m.ID))
	return m, nil
}

func (s *Instrumented) Delete(ctx context.Context, id string) error {
	span, ctx := observability.StartMediaSpan(ctx, "delete", attribute.String("media.id", id))
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		span.SetError(err)
		return err
	}
	err := s.next.Delete(ctx, id)
	if err != nil {
		span.SetError(err)
	}
	return err
}

func (s *Instrumented) URL(id string) string {
	return s.next.URL(id)
}

// Unwrap returns the wrapped store.
func (s *Instrumented) Unwrap() Store {
	return s.next
}
