// Package pipeline is the runtime abstraction generated pipelines are built
// against. It knows nothing about any concrete media or streaming library:
// a Factory makes named elements and containers, elements accept property
// assignments and can be linked, and a container owns its elements and
// moves between the Idle and Active states.
//
// Generated code uses the Must helpers, which panic on failure. Code that
// needs to recover uses the underlying interfaces and Handle directly.
package pipeline
