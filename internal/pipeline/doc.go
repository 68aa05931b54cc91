// Package pipeline composes crawl, answer, and persistence steps into a
// single run.
//
// A Pipeline executes its steps in order against one QueryReport, checking
// for cancellation between steps. The BatchProcessor fans whole pipelines
// out over multiple seeds with a bounded degree of concurrency; individual
// crawls remain strictly sequential.
package pipeline
