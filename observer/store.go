package observer

import (
	"context"
	"time"

	codex "github.com/nevindra/codex"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedStore wraps a codex.ChunkStore with OTEL instrumentation.
type ObservedStore struct {
	inner codex.ChunkStore
	inst  *Instruments
}

var _ codex.ChunkStore = (*ObservedStore)(nil)

// WrapStore returns an instrumented chunk store.
func WrapStore(inner codex.ChunkStore, inst *Instruments) *ObservedStore {
	return &ObservedStore{inner: inner, inst: inst}
}

func (o *ObservedStore) InsertChunks(ctx context.Context, chunks []codex.Chunk) (int, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "store.insert", trace.WithAttributes(
		AttrStoreOp.String("insert"),
		AttrChunkCount.Int(len(chunks)),
	))
	defer span.End()
	start := time.Now()

	n, err := o.inner.InsertChunks(ctx, chunks)

	durationMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		o.inst.ChunksWritten.Add(ctx, int64(n))
	}
	o.inst.InsertDuration.Record(ctx, durationMs)

	return n, err
}

func (o *ObservedStore) Nearest(ctx context.Context, embedding []float32, k int) ([]codex.ScoredChunk, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "store.search", trace.WithAttributes(
		AttrStoreOp.String("search"),
		AttrSearchK.Int(k),
	))
	defer span.End()
	start := time.Now()

	results, err := o.inner.Nearest(ctx, embedding, k)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(AttrResultCount.Int(len(results)))
	}

	o.inst.SearchRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	o.inst.SearchDuration.Record(ctx, durationMs)

	return results, err
}

func (o *ObservedStore) Count(ctx context.Context, sourceType string) (int, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "store.count", trace.WithAttributes(
		AttrStoreOp.String("count"),
		AttrSourceType.String(sourceType),
	))
	defer span.End()

	n, err := o.inner.Count(ctx, sourceType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return n, err
}

func (o *ObservedStore) DeleteSource(ctx context.Context, sourceType string) (int, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "store.delete_source", trace.WithAttributes(
		AttrStoreOp.String("delete_source"),
		AttrSourceType.String(sourceType),
	))
	defer span.End()

	n, err := o.inner.DeleteSource(ctx, sourceType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return n, err
}

func (o *ObservedStore) Init(ctx context.Context) error { return o.inner.Init(ctx) }

func (o *ObservedStore) Close() error { return o.inner.Close() }
