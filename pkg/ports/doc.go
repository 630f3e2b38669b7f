/*
Package ports defines the boundary interfaces of the Catalyst core.

The orchestrator depends only on these interfaces; adapters (memory, redis,
file, the generative-AI client) implement them. The package also ships a
reusable contract test suite so every StateStore implementation is verified
against the same behavior.
*/
package ports
