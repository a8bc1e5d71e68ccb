// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - VectorStore: Persisted embeddings with similarity search. Two
//     instances are wired, one for the article collection and one for
//     the legal-terms collection.
//   - EmbeddingService: Generates vector embeddings for chunks and queries.
//   - LLMService: The generation capability consuming assembled prompts.
//   - ConfigStore: Application configuration.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
