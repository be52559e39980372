// Package worker pushes local dataset copies to the remote mirror.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finrealize/internal/amqp"
	"finrealize/internal/mirror"
	"finrealize/internal/store"
)

// MirrorWorker reloads datasets from the local store and rewrites their
// remote copies. It reacts to sync messages and also re-mirrors everything
// periodically as a safety net for lost messages.
type MirrorWorker struct {
	store  store.Store
	mirror mirror.DatasetMirror
}

func NewMirrorWorker(store store.Store, mirror mirror.DatasetMirror) *MirrorWorker {
	return &MirrorWorker{store: store, mirror: mirror}
}

// HandleSyncMessage mirrors the dataset named in the message.
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context, msg *amqp.DatasetSyncMessage) error {
	slog.InfoContext(ctx, "Processing dataset sync message",
		"dataset", msg.Dataset,
		"count", msg.Count)

	switch msg.Dataset {
	case amqp.DatasetBudgetLines:
		return w.mirrorBudgetLines(ctx)
	case amqp.DatasetRealizations:
		return w.mirrorRealizations(ctx)
	case amqp.DatasetCategories:
		return w.mirrorCategories(ctx)
	default:
		// Unknown datasets are dropped, not requeued.
		slog.WarnContext(ctx, "Ignoring sync message for unknown dataset",
			"dataset", msg.Dataset)
		return nil
	}
}

// MirrorAll rewrites every dataset. Per-dataset failures are logged and the
// remaining datasets still run; the first error is reported at the end.
func (w *MirrorWorker) MirrorAll(ctx context.Context) error {
	var firstErr error
	for _, step := range []struct {
		dataset string
		run     func(context.Context) error
	}{
		{amqp.DatasetBudgetLines, w.mirrorBudgetLines},
		{amqp.DatasetRealizations, w.mirrorRealizations},
		{amqp.DatasetCategories, w.mirrorCategories},
	} {
		if err := step.run(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror dataset",
				"dataset", step.dataset,
				"error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (w *MirrorWorker) mirrorBudgetLines(ctx context.Context) error {
	lines, err := w.store.ListBudgetLines(ctx)
	if err != nil {
		return fmt.Errorf("load budget lines: %w", err)
	}
	if err := w.mirror.ReplaceBudgetLines(ctx, lines); err != nil {
		return fmt.Errorf("mirror budget lines: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored budget lines", "count", len(lines))
	return nil
}

func (w *MirrorWorker) mirrorRealizations(ctx context.Context) error {
	entries, err := w.store.ListRealizations(ctx)
	if err != nil {
		return fmt.Errorf("load realizations: %w", err)
	}
	if err := w.mirror.ReplaceRealizations(ctx, entries); err != nil {
		return fmt.Errorf("mirror realizations: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored realizations", "count", len(entries))
	return nil
}

func (w *MirrorWorker) mirrorCategories(ctx context.Context) error {
	cats, err := w.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if err := w.mirror.ReplaceCategories(ctx, cats); err != nil {
		return fmt.Errorf("mirror categories: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored categories", "count", len(cats))
	return nil
}
