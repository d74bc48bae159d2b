// Package decl defines the abstract declaration tree consumed by the
// compiler. Front-ends (HCL, YAML) produce a Tree; nothing downstream ever
// sees concrete syntax.
//
// A Tree is a schema name, a shape, an ordered list of variants (the stages)
// and an ordered list of schema-level decorators. Every decorator carries an
// ordered argument list. Order is always explicit: no part of the tree is
// stored in a map.
package decl
