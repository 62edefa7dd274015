// Package log provides the logging abstraction used across thumbship.
//
// The pipeline logs through the [Logger] interface so embedders can plug in
// their own logging library. A zerolog-backed implementation and a no-op
// logger are provided.
//
// Use the zerolog adapter:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Or build the console logger the CLI uses:
//
//	logger, err := log.NewConsoleLogger(os.Stderr, "info", false)
//
// Implement [Logger] to integrate with existing logging infrastructure.
package log
