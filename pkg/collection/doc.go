// Package collection provides remote-backed record collections.
//
// A Store holds an ordered set of records and persists them through a Proxy.
// Saving is asynchronous: Save groups pending work into create, update and
// destroy batches, fires the before-write signal for each batch, and hands the
// proxy call to the store's executor. Completion is delivered later through
// the store's dispatcher as exactly one write or exception signal per batch.
//
//	store := collection.NewStore("products", productType, proxy.NewMemory(),
//	    collection.WithDispatcher(loop.Post),
//	)
//	off := store.OnWrite(func(ev collection.WriteEvent) {
//	    log.Printf("%s ok: %d records", ev.Action, len(ev.Records))
//	})
//	defer off()
//
//	store.Add(productType.New(map[string]any{"name": "Widget"}))
//	_ = store.Save(ctx)
//
// Applications that keep all UI work on one goroutine should pass the event
// loop's Post function as the dispatcher, so signal listeners never run
// concurrently with UI handlers.
package collection
