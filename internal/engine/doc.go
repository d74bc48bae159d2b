// Package engine interprets a construction plan against a runtime
// pipeline.Factory. It is the in-process counterpart of generated code:
// the same instructions run in the same order, but failures are returned
// as errors that name the failing instruction instead of aborting.
package engine
