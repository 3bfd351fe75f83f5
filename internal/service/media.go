package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"socialhub/internal/mediastore"
	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/observability"

	"github.com/cenkalti/backoff/v4"
)

// Delete reasons recorded on socialhub_media_deletes_total.
const (
	DeleteReasonCompensation = "compensation"
	DeleteReasonRemoved      = "removed"
	DeleteReasonPurge        = "purge"
	DeleteReasonReplaced     = "replaced"
	DeleteReasonExpired      = "expired"
)

// RetryConfig tunes retries of media deletes.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryConfig returns the production retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
	}
}

// Media runs the upload and cleanup half of the consistency protocol against
// the external media store. Uploads are sequential and fatal on failure.
// Deletes are best-effort: retried, logged and never surfaced.
type Media struct {
	store    mediastore.Store
	retry    RetryConfig
	maxFiles int
}

// NewMedia creates the media coordinator. maxFiles caps a record's media
// list and is clamped to 1..10.
func NewMedia(store mediastore.Store, retry RetryConfig, maxFiles int) *Media {
	if maxFiles <= 0 || maxFiles > 10 {
		maxFiles = 10
	}
	return &Media{store: store, retry: retry, maxFiles: maxFiles}
}

// MaxFiles is the media ceiling per record.
func (m *Media) MaxFiles() int {
	return m.maxFiles
}

// URLs maps stored IDs to public URLs in order.
func (m *Media) URLs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.store.URL(id))
	}
	return out
}

// URL maps one stored ID.
func (m *Media) URL(id string) string {
	return m.store.URL(id)
}

// UploadAll uploads files one at a time and returns their IDs in input
// order. If any upload fails the earlier ones are compensated and a media
// error is returned.
func (m *Media) UploadAll(ctx context.Context, operation string, files []mediastore.File) ([]string, error) {
	ids := make([]string, 0, len(files))
	for i, f := range files {
		media, err := m.store.Upload(ctx, f)
		if err != nil {
			m.Compensate(ctx, operation, ids)
			return nil, models.NewMediaError(fmt.Sprintf("failed to upload file %d of %d", i+1, len(files)), err)
		}
		ids = append(ids, media.ID)
	}
	return ids, nil
}

// Compensate deletes media uploaded by an operation that then failed.
func (m *Media) Compensate(ctx context.Context, operation string, ids []string) {
	if len(ids) == 0 {
		return
	}
	observability.Compensations.WithLabelValues(operation).Inc()
	middleware.Logger.WarnContext(ctx, "compensating media uploads",
		slog.String("operation", operation),
		slog.Int("count", len(ids)),
	)
	m.DeleteAll(ctx, DeleteReasonCompensation, operation, ids)
}

// DeleteAll deletes ids in parallel and waits. Failures are logged only.
// Cleanup runs even when the request context has been cancelled.
func (m *Media) DeleteAll(ctx context.Context, reason, operation string, ids []string) {
	if len(ids) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for _, id := range ids {
		if id == "" {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := m.deleteWithRetry(ctx, operation, id)
			observability.MediaDeletes.WithLabelValues(reason, observability.ResultLabel(err)).Inc()
			if err != nil {
				middleware.Logger.WarnContext(ctx, "media delete failed",
					slog.String("media_id", id),
					slog.String("operation", operation),
					slog.String("reason", reason),
					slog.String("error", err.Error()),
				)
			}
		}(id)
	}
	wg.Wait()
}

func (m *Media) deleteWithRetry(ctx context.Context, operation, id string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.retry.InitialInterval
	bo.MaxInterval = m.retry.MaxInterval
	bo.Multiplier = m.retry.Multiplier
	bo.Reset()

	retryable := backoff.WithContext(backoff.WithMaxRetries(bo, m.retry.MaxRetries), ctx)
	notify := func(err error, next time.Duration) {
		middleware.Logger.DebugContext(ctx, "media delete failed, retrying",
			slog.String("media_id", id),
			slog.String("operation", operation),
			slog.String("error", err.Error()),
			slog.String("next_attempt_in", next.Round(time.Millisecond).String()),
		)
	}
	return backoff.RetryNotify(func() error {
		return m.store.Delete(ctx, id)
	}, retryable, notify)
}

// ApplyDelta implements the media half of an update. Every id in deleteIDs
// must be in current, otherwise nothing happens and a validation error is
// returned. Validated ids are deleted (best-effort), new files are uploaded
// under the combined ceiling, and the result lists new ids first followed by
// the kept ones. uploaded holds the new ids so the caller can compensate if
// persisting fails.
func (m *Media) ApplyDelta(ctx context.Context, operation string, current, deleteIDs []string, files []mediastore.File) (result, uploaded []string, err error) {
	owned := make(map[string]struct{}, len(current))
	for _, id := range current {
		owned[id] = struct{}{}
	}
	drop := make(map[string]struct{}, len(deleteIDs))
	for _, id := range deleteIDs {
		if _, ok := owned[id]; !ok {
			return nil, nil, models.NewValidationError(fmt.Sprintf("media %q does not belong to this record", id))
		}
		drop[id] = struct{}{}
	}

	kept := make([]string, 0, len(current))
	for _, id := range current {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	if len(kept)+len(files) > m.maxFiles {
		return nil, nil, models.NewValidationError(fmt.Sprintf("a record can hold at most %d images", m.maxFiles))
	}

	if len(drop) > 0 {
		ids := make([]string, 0, len(drop))
		for _, id := range current {
			if _, ok := drop[id]; ok {
				ids = append(ids, id)
			}
		}
		m.DeleteAll(ctx, DeleteReasonRemoved, operation, ids)
	}

	uploaded, err = m.UploadAll(ctx, operation, files)
	if err != nil {
		return nil, nil, err
	}

	result = make([]string, 0, len(uploaded)+len(kept))
	result = append(result, uploaded...)
	result = append(result, kept...)
	return result, uploaded, nil
}

// remainingMedia counts the current IDs that survive the delete-list.
func remainingMedia(current, deleteIDs []string) int {
	drop := make(map[string]struct{}, len(deleteIDs))
	for _, id := range deleteIDs {
		drop[id] = struct{}{}
	}
	n := 0
	for _, id := range current {
		if _, gone := drop[id]; !gone {
			n++
		}
	}
	return n
}
