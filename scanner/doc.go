// Package scanner discovers objects inside a tree of Go source modules.
//
// A Scanner walks a package directory found under one of its search roots,
// interprets every module file exactly once with yaegi, reflects over the
// exported top-level identifiers of each module and hands every object that
// satisfies the configured Predicate to the configured Callback. Results are
// accumulated in a Context owned by the Scanner.
//
// Failures are isolated: a module that fails to load, a malformed directory
// marker, or a predicate/callback that fails for one object are routed to
// the Hooks and the walk continues. Only a target that cannot be resolved
// (ErrUnresolved), or a hook that returns an error (ErrEscalated), ends a
// scan early.
//
// Layout conventions:
//
//	root/
//	└── plugins/          package "plugins"
//	    ├── doc.go        module "plugins" (visited first)
//	    ├── alpha.go      module "plugins.alpha"
//	    ├── beta.go       module "plugins.beta"
//	    ├── assets/       not a package (no .go files), never entered
//	    └── extra/        package "plugins.extra"
//	        ├── .looksee  {"ignore": true} skips the whole subtree
//	        └── x.go
package scanner
