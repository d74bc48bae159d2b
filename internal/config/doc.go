// Package config defines the format-agnostic loading interface for schema
// sources. Concrete front-ends (HCL, YAML) implement Loader and turn files
// into declaration trees; Load picks the front-end by file extension.
package config
