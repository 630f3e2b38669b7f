/*
Package domain contains the core types of the Catalyst pipeline: the fixed
ten-step catalog, the per-step results, and the mutable pipeline state.

The types here are plain data. All sequencing rules (dependency resolution,
auto-advance, the in-flight guard) live in the orchestrator; all I/O lives
in adapters. This keeps the domain serializable and trivially testable.
*/
package domain
