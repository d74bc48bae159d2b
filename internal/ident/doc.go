/*
Package ident derives every identifier the compiler emits from a declared
stage or schema name.

  - Canonical: lower snake case, used as plan id and link token form
    (`URIDecodeBin` -> `uri_decode_bin`).
  - FactoryKey: the raw name lower-cased without separators, used to ask
    the runtime factory for an element (`URIDecodeBin` -> `uridecodebin`).
  - Instance: canonical id plus multiplicity suffix (`worker_2`).
  - Field / TypeName: exported Go names for generated code.
*/
package ident
