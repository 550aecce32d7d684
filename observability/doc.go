// Package observability provides OpenTelemetry tracing and engine health
// reporting for the transcription pipeline.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("audio2txt"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineProcess)
//	defer span.End()
//
// Health:
//
//	health := observability.NewServiceHealth("audio2txt", "1.0.0")
//	health.AddComponent(observability.CheckProvider(ctx, whisperProvider))
package observability
