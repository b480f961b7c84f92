// Package harness runs conformance scenarios against a real engine.
//
// Each scenario opens a fresh in-memory database, starts an engine with
// a fixed session token, and drives it through the scenario's steps.
// Every step renders one trace line of the form
//
//	step N: <description> -> <outcome>
//
// where the outcome is an audit outcome code, never a Go error string.
// The rendered trace is deterministic: the logical clock, the fixed
// session token, and content-addressed invocation IDs leave nothing to
// vary between runs, so traces compare byte-for-byte against golden
// files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	session: fixed-session-token   # optional, defaults to "scenario"
//	quota: 0                       # optional per-heap element limit
//	steps:
//	  - init: alice
//	  - exec: {principal: alice, op: init_max}
//	  - exec: {principal: alice, op: insert, arg: 10}
//	  - view: {principal: alice, kind: peek}
//	  - exec: {principal: alice, op: extract}
//	  - verify: alice
//	expect:
//	  - {step: 5, outcome: ok}
//	final:
//	  - {principal: alice, size: 0}
//
// Steps without an expect entry must report "ok". Final checks compare
// heap state after the last step with subset semantics: only the fields
// a check sets are compared.
//
// # Validation Layers
//
// A scenario run is validated three ways:
//
//  1. The expect list pins outcome codes per step.
//  2. Final checks compare principal heap state after the run.
//  3. Golden comparison catches everything else, including extract
//     order and rendered element values.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/round_trip.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
