// Package harness runs transpiler scenarios end to end.
//
// A scenario describes a small project: a set of C# source files, optional
// type map overrides, and expectations about the build and the generated
// Lua. The harness materialises the project in a temporary directory, runs
// the build orchestrator against it and evaluates the expectations.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	type_map:
//	  Vector3: Vector3.new()
//	runs: 2              # build the project this many times (default 1)
//	files:
//	  Game/Player.cs: |
//	    namespace Game { class Player { } }
//	  Broken.cs: !!binary //79
//	expect:
//	  built: 1
//	  skipped: 0
//	  failed: 1
//	  outputs:
//	    Game/Player.lua:
//	      ordered: ["local Game = {}", "Game.Player = Player"]
//	      contains: ["local Player = {}"]
//	      absent: ["return"]
//
// Counts and outputs are checked against the last run. Builds use an
// in-memory build cache, so a second run of an unchanged project reports
// every file as skipped.
//
// # Golden Files
//
// RunWithGolden compares a text snapshot of every file result and its
// generated Lua against testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
