// Package services implements the driving port interfaces.
// Services contain the retrieval-and-context-assembly engine:
// hierarchy classification, multi-query retrieval, context assembly
// and QA orchestration.
//
// Services are pure Go with no external dependencies beyond the
// concurrency primitives in golang.org/x/sync.
package services
