// Package links is the Link Analyzer. It expands link directives into
// ordered pairwise wiring operations over resolved identifiers.
package links

import (
	"context"
	"fmt"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/diag"
	"github.com/vk/pipegen/internal/ident"
	"github.com/vk/pipegen/internal/schema"
)

// minChainLength is the shortest link directive that describes a wire.
const minChainLength = 2

// IdentifierSet is the active identifier set produced by name resolution.
type IdentifierSet interface {
	Has(id string) bool
}

// Op wires the output of From into the input of To.
type Op struct {
	From string
	To   string
	// Chain is the zero-based index of the directive that produced the op.
	Chain int
	Pos   decl.Pos
}

func (o Op) String() string {
	return fmt.Sprintf("%s -> %s", o.From, o.To)
}

// Result holds the wiring operations and any dropped-pair diagnostics.
type Result struct {
	Ops         []Op
	Diagnostics diag.List
}

// Analyze expands every chain [t0, t1, ..., tk] into (t0,t1) ... (tk-1,tk).
// Output order is directive order, then pair order inside a directive.
// A chain shorter than two tokens is always an error. A pair naming a token
// outside the active set is dropped and reported according to mode.
func Analyze(ctx context.Context, chains []schema.LinkChain, set IdentifierSet, mode diag.Mode) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Analyzing link directives.", "directives", len(chains))

	r := &Result{}
	for i, chain := range chains {
		subject := fmt.Sprintf("link #%d", i+1)
		if len(chain.Tokens) < minChainLength {
			return nil, diag.Single(diag.Errorf(diag.CodeCount, chain.Pos, subject,
				"you need to specify at least %d stages when linking, got %d", minChainLength, len(chain.Tokens)))
		}

		for j := 1; j < len(chain.Tokens); j++ {
			from := ident.Canonical(chain.Tokens[j-1])
			to := ident.Canonical(chain.Tokens[j])

			var missing []string
			if !set.Has(from) {
				missing = append(missing, chain.Tokens[j-1])
			}
			if !set.Has(to) {
				missing = append(missing, chain.Tokens[j])
			}
			if len(missing) > 0 {
				d := mode.Dropped(diag.CodeUnresolvedLink, chain.Pos, subject,
					"dropping link %s -> %s: %q does not name an active stage", chain.Tokens[j-1], chain.Tokens[j], missing[0])
				if d.Severity == diag.SeverityError {
					return nil, diag.Single(d)
				}
				r.Diagnostics = append(r.Diagnostics, d)
				logger.Debug("Dropping unresolved link pair.", "from", from, "to", to)
				continue
			}

			r.Ops = append(r.Ops, Op{From: from, To: to, Chain: i, Pos: chain.Pos})
		}
	}

	logger.Debug("Link directives analyzed.", "ops", len(r.Ops), "dropped", len(r.Diagnostics))
	return r, nil
}
