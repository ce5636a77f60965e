// Package instrumentation provides OpenTelemetry instrumentation for the
// login handlers: counters and histograms for handshake outcomes and provider
// back-channel calls, plus nil-safe tracing helpers.
//
// When the Enabled flag is off (or no Instrumentation is configured at all),
// no-op providers are used and recording has zero overhead.
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "my-service",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
// All operations are safe for concurrent use.
package instrumentation
