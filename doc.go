/*
Package catalyst is a sequencing engine for a fixed ten-stage drug
discovery workflow, from data assembly to the final report.

It separates the pipeline state (which steps ran, their results, the
user's inputs) from the computation itself, which is delegated to an
external analysis service behind a small interface. The engine manages
ordering, dependency checks between stages, and failure handling, while
your application ("Host") manages I/O and presentation. This hexagonal
layout allows Catalyst to be embedded in any interface: CLI, HTTP
server, or a larger platform.

# Concept

Every session walks the same ten steps. A step consumes the user's
input compound plus results of earlier steps; the engine refuses to run
a step whose upstream artifacts are missing, and tells the user which
step to run first. Results are kept per step and only ever replaced by
re-running that step, so earlier work survives failures and navigation.

# Key Features

  - Fixed catalog: the step order is compiled in and identical for every session.
  - Dependency checks: pre-flight validation with actionable messages, no wasted service calls.
  - Single-flight execution: at most one analysis call per session at any time.
  - Stale-result protection: results computed for superseded inputs are discarded.
  - Hexagonal architecture: storage, transport, and the analysis service are adapters.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/halden-bio/catalyst"
		"github.com/halden-bio/catalyst/pkg/adapters/genai"
	)

	func main() {
		client := genai.New(genai.Config{
			BaseURL: "https://analysis.example.com",
			APIKey:  "...",
		})

		pipe := catalyst.New(client, catalyst.WithInputs("CCO", "3POZ"))

		ctx := context.Background()
		if err := pipe.RunAll(ctx); err != nil {
			log.Fatal(err)
		}

		report := pipe.Result("final-report")
		log.Println(report.Payload["text"])
	}
*/
package catalyst
