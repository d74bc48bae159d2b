// Package hclsource is the HCL front-end. It parses HCL files into
// declaration trees, one per top-level `pipeline` block:
//
//	pipeline "GStreamerInput" {
//	  link { stages = [Src, URIDecodeBin, CudaUpload] }
//
//	  stage "Src" { name = "source" }
//	  stage "Worker" { count = 3 }
//	  stage "X" {
//	    property {
//	      location = "test"
//	      sep      = char(",")
//	    }
//	  }
//	}
//
// Attribute and block order always follows the source, never map iteration.
// Any other top-level block or attribute becomes a tree whose shape the
// schema parser rejects.
package hclsource
