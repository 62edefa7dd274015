// Package thumbship turns an image manifest into stored thumbnails.
//
// A manifest is comma-separated UTF-8 text with a header row naming at
// least the id and url columns (index is optional). Quoting is not
// supported, so values cannot contain commas. Every row becomes a
// record; records are processed in fixed-size batches. Within a batch each
// image is downloaded and reduced to a 100x100 thumbnail concurrently, and
// the batch's thumbnails are bulk-inserted into the configured sink once all
// of them have resolved.
//
// Failures are contained: a record that cannot be fetched or resized is
// dropped and logged, a batch whose insert fails is logged and the run moves
// on. Run only returns an error when the manifest cannot be read or parsed,
// or the sink cannot be opened.
//
// Basic usage:
//
//	cfg := thumbship.DefaultConfig()
//	cfg.Manifest = "/data/manifest.txt"
//	cfg.Sink = "mongodb://localhost:27017"
//	cfg.BatchSize = 50
//
//	t, err := thumbship.New(cfg, thumbship.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	summary, err := t.Run(ctx)
//
// # Manifest sources
//
// Config.Manifest selects the source by form:
//
//   - s3://bucket/key reads an object through the default AWS credential chain.
//   - http:// and https:// URLs are downloaded.
//   - anything else is a local file path.
//
// # Sinks
//
// Config.Sink selects the persistence medium by scheme:
//
//   - mongodb:// and mongodb+srv:// insert into Database.Collection.
//   - postgres:// and postgresql:// insert into Table.
//   - badger://dir stores records in an embedded database under dir.
//
// A custom ports implementation can be injected with WithSink.
//
// # Watching
//
// Serve runs once and then keeps running whenever a registered plugin
// requests it. The manifestwatcher plugin re-runs on manifest changes.
package thumbship
