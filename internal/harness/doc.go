// Package harness builds synthetic training runs for tests and demos.
//
// A fixture is a YAML file describing run directories and the scalar records
// each one logged. Materialize writes every run as a real TensorBoard event
// log, so the loader, the render pipeline and the CLI can be exercised end to
// end without a training job.
//
// # Fixture Format
//
//	name: q2_search
//	description: "two batch-size runs with a duplicated step"
//	runs:
//	  - dir: q2_b1000_r0.01_InvertedPendulum-v4_01-10-2025_21-12-20
//	    records:
//	      - { tag: Eval_AverageReturn, step: 0, value: 10 }
//	      - { tag: Eval_AverageReturn, step: 0, value: 20 }
//	  - dir: q2_broken
//	    corrupt: true
//	    records:
//	      - { tag: Eval_AverageReturn, step: 0, value: 1 }
//
// Unknown fields are rejected so typos fail loudly.
//
// # Golden Files
//
// AssertGolden compares output against testdata/golden/<name>.golden. To
// regenerate golden files, run:
//
//	go test ./... -update
package harness
