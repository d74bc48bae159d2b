// Package golden holds generated pipeline code checked in as a reference
// output of the code generator. Regenerate it with
//
//	go test ./internal/codegen -run TestGenerate_Golden -update
package golden
