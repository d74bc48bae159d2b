package plan

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Encode writes the canonical YAML encoding of the plan.
func (p *Plan) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode plan %q: %w", p.Schema, err)
	}
	return enc.Close()
}

// Fingerprint is the hex BLAKE3 digest of the canonical encoding. Equal
// schemas always produce equal fingerprints.
func (p *Plan) Fingerprint() (string, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return "", err
	}
	sum := blake3.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// Document is the plan as printed by the plan command.
type Document struct {
	Fingerprint string `yaml:"fingerprint"`
	Plan        *Plan  `yaml:"plan"`
}

// EncodeDocuments writes one YAML document per plan, each carrying its
// fingerprint.
func EncodeDocuments(w io.Writer, plans []*Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, p := range plans {
		fp, err := p.Fingerprint()
		if err != nil {
			return err
		}
		if err := enc.Encode(Document{Fingerprint: fp, Plan: p}); err != nil {
			return fmt.Errorf("failed to encode plan %q: %w", p.Schema, err)
		}
	}
	return enc.Close()
}
