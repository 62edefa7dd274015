// Package domain contains the core entities and value objects for thumbship.
//
// This package is the innermost layer of the pipeline. It has no dependencies
// on infrastructure concerns (HTTP, databases, logging) and contains only the
// records, outcomes and error taxonomy the pipeline passes between stages.
//
// # Entities
//
//   - [RawRecord]: one manifest row narrowed into typed fields
//   - [WorkingEntity]: the record carried through fetch and resize
//   - [Batch]: a contiguous group of working entities processed together
//   - [PersistableImage]: the projection written to the document store
//   - [FetchOutcome]: the tagged result of fetching one entity
//
// # Design Principles
//
// Domain values are:
//   - Passed by value between pipeline stages
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
