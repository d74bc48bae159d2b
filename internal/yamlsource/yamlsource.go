// Package yamlsource is the YAML front-end. Each YAML document is one
// declaration tree:
//
//	pipeline: GStreamerInput
//	links:
//	  - [Src, URIDecodeBin, CudaUpload]
//	stages:
//	  - Src: {name: source}
//	  - URIDecodeBin
//	  - Worker: {count: 3}
//	  - X:
//	      property:
//	        - {location: test}
//	        - {sep: !char ","}
//
// The node API is used throughout so that key order is the document order.
// Plain scalars are typed by their resolved YAML tag; the !char tag marks a
// character literal.
package yamlsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/decl"
	"github.com/vk/pipegen/internal/schema"
	"gopkg.in/yaml.v3"
)

// Root keys of a pipeline document.
const (
	keyPipeline = "pipeline"
	keyStages   = "stages"
	keyLinks    = "links"
)

// CharTag marks a scalar as a character literal.
const CharTag = "!char"

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Load parses every document of every file, in order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*decl.Tree, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	var trees []*decl.Tree
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", path, err)
		}
		fileTrees, err := Parse(ctx, path, src)
		if err != nil {
			return nil, err
		}
		trees = append(trees, fileTrees...)
	}
	logger.Debug("YAML loading complete.", "schemas", len(trees))
	return trees, nil
}

// Parse translates YAML source held in memory.
func Parse(ctx context.Context, filename string, src []byte) ([]*decl.Tree, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	t := &translator{file: filename}

	var trees []*decl.Tree
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
		}
		if len(doc.Content) == 0 {
			continue
		}
		tree, err := t.document(doc.Content[0])
		if err != nil {
			return nil, fmt.Errorf("failed to translate YAML file %s: %w", filename, err)
		}
		trees = append(trees, tree)
	}
	ctxlog.FromContext(ctx).Debug("Parsed YAML source.", "filename", filename, "schemas", len(trees))
	return trees, nil
}

type translator struct {
	file string
}

func (t *translator) pos(n *yaml.Node) decl.Pos {
	return decl.Pos{File: t.file, Line: n.Line, Column: n.Column}
}

// document builds a tree. Anything but a mapping with a pipeline name and
// a stages sequence keeps its shape so the schema parser can reject it.
func (t *translator) document(root *yaml.Node) (*decl.Tree, error) {
	tree := &decl.Tree{Pos: t.pos(root)}
	if root.Kind != yaml.MappingNode {
		tree.Shape = decl.ShapeUnknown
		return tree, nil
	}

	name := lookup(root, keyPipeline)
	stages := lookup(root, keyStages)
	if name != nil && name.Kind == yaml.ScalarNode {
		tree.Name = name.Value
	}
	if name == nil || stages == nil || stages.Kind != yaml.SequenceNode {
		tree.Shape = decl.ShapeRecord
		return tree, nil
	}
	tree.Shape = decl.ShapeVariants

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case keyPipeline:
		case keyStages:
			for _, entry := range val.Content {
				v, err := t.stage(entry)
				if err != nil {
					return nil, err
				}
				tree.Variants = append(tree.Variants, v)
			}
		case keyLinks:
			links, err := t.links(val)
			if err != nil {
				return nil, err
			}
			tree.Decorators = append(tree.Decorators, links...)
		default:
			tree.Decorators = append(tree.Decorators, t.decorator(key, val))
		}
	}
	return tree, nil
}

// stage reads `- Ident`, `- Ident: {decorators}` or `- Ident: [payload]`.
func (t *translator) stage(n *yaml.Node) (decl.Variant, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return decl.Variant{Ident: n.Value, Pos: t.pos(n)}, nil
	case yaml.MappingNode:
	default:
		return decl.Variant{}, fmt.Errorf("%s: stage entry must be an identifier or a single-key mapping", t.pos(n))
	}
	if len(n.Content) != 2 {
		return decl.Variant{}, fmt.Errorf("%s: stage entry must have exactly one key, got %d", t.pos(n), len(n.Content)/2)
	}

	key, val := n.Content[0], n.Content[1]
	v := decl.Variant{Ident: key.Value, Pos: t.pos(key)}
	switch val.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(val.Content); i += 2 {
			v.Decorators = append(v.Decorators, t.decorator(val.Content[i], val.Content[i+1]))
		}
	case yaml.SequenceNode:
		for _, p := range val.Content {
			v.Payload = append(v.Payload, p.Value)
		}
	case yaml.ScalarNode:
		if val.Tag != "!!null" {
			v.Payload = append(v.Payload, val.Value)
		}
	}
	return v, nil
}

// decorator turns `key: scalar` into a positional decorator, and
// `key: {k: v}` or `key: [{k: v}, ...]` into keyword arguments.
func (t *translator) decorator(key, val *yaml.Node) decl.Decorator {
	d := decl.Decorator{Name: key.Value, Pos: t.pos(key)}
	switch val.Kind {
	case yaml.MappingNode:
		d.Args = append(d.Args, t.keywords(val)...)
	case yaml.SequenceNode:
		for _, item := range val.Content {
			if item.Kind == yaml.MappingNode {
				d.Args = append(d.Args, t.keywords(item)...)
				continue
			}
			d.Args = append(d.Args, decl.Arg{Value: t.literal(item), Pos: t.pos(item)})
		}
	default:
		d.Args = []decl.Arg{{Value: t.literal(val), Pos: t.pos(val)}}
	}
	return d
}

func (t *translator) keywords(m *yaml.Node) []decl.Arg {
	args := make([]decl.Arg, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		args = append(args, decl.Arg{Key: k.Value, Value: t.literal(v), Pos: t.pos(k)})
	}
	return args
}

// links reads a sequence of token sequences.
func (t *translator) links(n *yaml.Node) ([]decl.Decorator, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: links must be a sequence of stage lists", t.pos(n))
	}
	out := make([]decl.Decorator, 0, len(n.Content))
	for _, chain := range n.Content {
		if chain.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%s: link must be a list of stage identifiers", t.pos(chain))
		}
		d := decl.Decorator{Name: schema.DecoratorLink, Pos: t.pos(chain)}
		for _, tok := range chain.Content {
			d.Args = append(d.Args, decl.Arg{Value: decl.Ident(tok.Value), Pos: t.pos(tok)})
		}
		out = append(out, d)
	}
	return out, nil
}

// literal classifies a node by its resolved tag.
func (t *translator) literal(n *yaml.Node) decl.Literal {
	if n.Kind != yaml.ScalarNode {
		return decl.Unsupported(render(n))
	}
	switch n.Tag {
	case CharTag:
		return decl.Literal{Kind: decl.LitChar, Text: n.Value}
	case "!!str":
		return decl.String(n.Value)
	case "!!int":
		return decl.Int(strings.ReplaceAll(n.Value, "_", ""))
	case "!!float":
		return decl.Float(n.Value)
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return decl.Unsupported(n.Value)
		}
		return decl.Bool(b)
	default:
		return decl.Unsupported(n.Value)
	}
}

// render prints a non-scalar node in flow style for diagnostics.
func render(n *yaml.Node) string {
	c := *n
	c.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&c)
	if err != nil {
		return n.Tag
	}
	return strings.TrimSpace(string(out))
}

// lookup returns the value of key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
