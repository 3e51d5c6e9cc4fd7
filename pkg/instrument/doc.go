// Package instrument observes storable hosts through their events.
//
// Metrics records Prometheus counters and a save latency histogram; Tracing
// records one OpenTelemetry span per save. Both attach to any ui.Observable,
// usually a host panel right after storable.Install:
//
//	m := instrument.NewMetrics(instrument.WithRegistry(reg))
//	detach := m.Attach(editor, "products")
//	defer detach()
//
// Because storable-save and storable-cancel bubble, attaching to an ancestor
// also observes those two events from every editor below it.
package instrument
