// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"runtime/trace"
	"time"

	"github.com/rs/zerolog/log"
)

// Span represents one catalog operation in flight, such as a domain scan
// or a locale merge.
type Span struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration

	Op     string
	Domain string
	Locale string
	Error  error
}

func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "catalog."+span.Op)

	return ctx
}

func (span *Span) End() {
	// only log once
	if span.task != nil {
		span.duration = time.Since(span.start)
		span.task.End()
		span.task = nil
	}
}

func (span Span) Log() {
	event := log.Debug()

	if span.Error != nil {
		event = log.Warn().Err(span.Error)
	}

	event.Str("sys", "pipeline")
	event.Str("op", span.Op)
	event.Str("domain", span.Domain)

	if span.Locale != "" {
		event.Str("locale", span.Locale)
	}

	event.Dur("dur", span.duration)
	event.Msg("Catalog operation finished")
}
