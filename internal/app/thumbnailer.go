package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/thumbship/internal/domain"
	"github.com/bft-labs/thumbship/internal/ports"
)

// Thumbnail dimensions every record is resized to.
const (
	ThumbnailWidth  = 100
	ThumbnailHeight = 100
)

var errEmptyThumbnail = errors.New("resizer returned no data")

// ThumbnailFetcher fetches one record's image and resizes it.
// Failures are isolated to the record: they are logged and reported in the
// outcome, never returned or propagated to sibling fetches.
type ThumbnailFetcher struct {
	fetcher ports.ResourceFetcher
	resizer ports.Resizer
	logger  ports.Logger
}

// NewThumbnailFetcher creates a fetcher over the given capabilities.
func NewThumbnailFetcher(fetcher ports.ResourceFetcher, resizer ports.Resizer, logger ports.Logger) *ThumbnailFetcher {
	return &ThumbnailFetcher{
		fetcher: fetcher,
		resizer: resizer,
		logger:  logger,
	}
}

// Fetch produces the outcome for e. The entity is taken by value; on success
// the returned entity carries the thumbnail and no URL.
func (t *ThumbnailFetcher) Fetch(ctx context.Context, e domain.WorkingEntity) domain.FetchOutcome {
	if !e.HasURL() {
		t.logger.Debug("record has no url, skipping", ports.String("id", e.ID), ports.Int("index", e.Index))
		return domain.Skipped(e)
	}

	data, err := t.fetch(ctx, e.URL)
	if err != nil {
		return t.fail(e, domain.StageFetch, err)
	}

	thumb, err := t.resize(ctx, data)
	if err == nil && len(thumb) == 0 {
		err = errEmptyThumbnail
	}
	if err != nil {
		return t.fail(e, domain.StageTransform, err)
	}

	return domain.Succeeded(e.WithThumbnail(thumb))
}

func (t *ThumbnailFetcher) fail(e domain.WorkingEntity, stage domain.Stage, err error) domain.FetchOutcome {
	msg := "thumbnail fetch failed"
	if stage == domain.StageTransform {
		msg = "thumbnail transform failed"
	}
	t.logger.Error(msg,
		ports.String("id", e.ID),
		ports.Int("index", e.Index),
		ports.String("url", e.URL),
		ports.Err(err),
	)
	return domain.Failed(e, &domain.RecordError{Stage: stage, ID: e.ID, Index: e.Index, Err: err})
}

func (t *ThumbnailFetcher) fetch(ctx context.Context, url string) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetcher panic: %v", r)
		}
	}()
	return t.fetcher.Fetch(ctx, url)
}

func (t *ThumbnailFetcher) resize(ctx context.Context, data []byte) (thumb []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resizer panic: %v", r)
		}
	}()
	return t.resizer.Resize(ctx, data, ThumbnailWidth, ThumbnailHeight)
}
