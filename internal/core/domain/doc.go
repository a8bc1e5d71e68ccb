// Package domain defines the core business entities for KanunQA.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentChunk: A retrievable unit of legal text or terminology
//   - HierarchyRangeTable: Article-number ranges of the criminal code's books
//   - Query / RetrievalResult: The vector store search contract
//   - AssembledContext: The bounded context handed to generation
//   - Answer: The final response with sources and confidence
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
