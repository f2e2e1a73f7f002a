/*
Package dsl provides a Go DSL for programmatically constructing nest state trees.

It is an alternative to YAML or JSON files when trees are generated dynamically,
written in tests, or simply easier to read as Go code.

Example usage:

	package main

	import (
		"github.com/aretw0/nest/pkg/dsl"
		"github.com/aretw0/nest/pkg/fsm"
	)

	func main() {
		cfg := dsl.New("MAIN").
			Initial("LOGIN").
			On("LOGIN", "ok", "MAIN_VIEW").
			State("LOGIN", func(b *dsl.Builder) {
				b.Initial("FORM")
			}).
			MustBuild()

		p := fsm.New(cfg)
		// ... p.Dispatch(ctx, "")
	}
*/
package dsl
