// Package ports defines the interfaces (ports) that connect the pipeline
// core to infrastructure adapters.
//
// Ports are the boundaries between the pipeline and the outside world. They
// define what the pipeline needs from external systems without specifying
// how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [ManifestSource]: Reads the raw manifest bytes
//   - [ResourceFetcher]: Fetches the bytes behind a record URL
//   - [Resizer]: Derives a thumbnail from fetched bytes
//   - [PersistenceSink]: Bulk-inserts processed records, unordered
//   - [MemoryReclaimer]: Best-effort memory reclaim hint between batches
//   - [ProgressRepository]: Persists the last batch checkpoint
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with MongoDB,
// PostgreSQL, Badger, S3, HTTP and the local file system.
package ports
