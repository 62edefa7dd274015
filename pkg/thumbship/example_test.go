package thumbship_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/thumbship/pkg/thumbship"
)

// ExampleNew demonstrates how to embed thumbship in your application.
func ExampleNew() {
	cfg := thumbship.DefaultConfig()
	cfg.Manifest = "/path/to/manifest.txt"
	cfg.Sink = "mongodb://localhost:27017"
	cfg.BatchSize = 50

	t, err := thumbship.New(cfg)
	if err != nil {
		fmt.Printf("failed to create thumbship: %v\n", err)
		return
	}

	summary, err := t.Run(context.Background())
	if err != nil {
		fmt.Printf("run failed: %v\n", err)
		return
	}
	fmt.Printf("persisted %d of %d\n", summary.Persisted, summary.Attempted)
}

// Example_customSink demonstrates injecting a persistence implementation.
func Example_customSink() {
	cfg := thumbship.Config{
		Manifest:  "/path/to/manifest.txt",
		BatchSize: 10,
	}

	t, err := thumbship.New(cfg, thumbship.WithSink(&stdoutSink{}))
	if err != nil {
		fmt.Printf("failed to create thumbship: %v\n", err)
		return
	}

	_ = t // Use thumbship instance...
}

// stdoutSink implements thumbship.Sink by printing what it receives.
type stdoutSink struct{}

func (s *stdoutSink) Open(context.Context) error  { return nil }
func (s *stdoutSink) Close(context.Context) error { return nil }

func (s *stdoutSink) BulkInsert(_ context.Context, recs []thumbship.PersistableImage) (thumbship.InsertResult, error) {
	for _, r := range recs {
		fmt.Printf("%s (%d): %d bytes\n", r.ID, r.Index, len(r.Thumbnail))
	}
	return thumbship.InsertResult{Inserted: len(recs)}, nil
}

// Example_withBatchHandler demonstrates progress reporting.
func Example_withBatchHandler() {
	cfg := thumbship.Config{
		Manifest:  "/path/to/manifest.txt",
		Sink:      "badger:///var/lib/thumbship",
		BatchSize: 25,
	}

	handler := thumbship.BatchHandlerFunc(func(r thumbship.BatchReport) {
		fmt.Printf("batch %d: %d persisted, last %s@%d\n", r.Seq, r.Persisted, r.LastID, r.LastIndex)
	})

	t, err := thumbship.New(cfg, thumbship.WithBatchHandler(handler))
	if err != nil {
		fmt.Printf("failed to create thumbship: %v\n", err)
		return
	}

	_ = t // Use thumbship instance...
}

// ExampleConfig_Validate shows the batch size requirement.
func ExampleConfig_Validate() {
	cfg := thumbship.DefaultConfig()
	fmt.Println(cfg.Validate())

	cfg.BatchSize = 1
	fmt.Println(cfg.Validate())

	// Output:
	// thumbship: invalid configuration: batch size must be positive
	// <nil>
}
