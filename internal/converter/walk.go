package converter

import (
	"errors"
	"strings"
)

// ErrSkipChildren can be returned from a WalkFunc to skip the children of the current node.
var ErrSkipChildren = errors.New("skip children")

// WalkFunc is called for every node visited by Walk. path holds external names from the root
// to n, inclusive, and must not be retained.
type WalkFunc func(path []string, n Node) error

// FieldInfo is a flattened description of one node of a converter tree.
type FieldInfo struct {
	Path        string `json:"path"                  toml:"path"                  yaml:"path"`
	Internal    string `json:"internal"              toml:"internal"              yaml:"internal"`
	External    string `json:"external"              toml:"external"              yaml:"external"`
	Kind        string `json:"kind"                  toml:"kind"                  yaml:"kind"`
	Depth       int    `json:"depth"                 toml:"depth"                 yaml:"depth"`
	Public      bool   `json:"public"                toml:"public"                yaml:"public"`
	Filter      bool   `json:"filter"                toml:"filter"                yaml:"filter"`
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`
	Fields      int    `json:"fields"                toml:"fields"                yaml:"fields"`
}

// Walk visits n and its descendants depth-first, parents before children, in declaration order.
func Walk(n Node, fn WalkFunc) error {
	if n == nil {
		return nil
	}
	err := walk(n, nil, fn)
	if errors.Is(err, ErrSkipChildren) {
		return nil
	}
	return err
}

func walk(n Node, path []string, fn WalkFunc) error {
	path = append(path, n.ExternalName())

	if err := fn(path, n); err != nil {
		return err
	}

	for _, child := range n.Fields() {
		err := walk(child, path, fn)
		if errors.Is(err, ErrSkipChildren) {
			continue
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// Describe returns one FieldInfo per node of the tree rooted at n, in Walk order.
func Describe(n Node) []FieldInfo {
	var infos []FieldInfo

	_ = Walk(n, func(path []string, node Node) error {
		f := node.Field()
		infos = append(infos, FieldInfo{
			Path:        strings.Join(path, "."),
			Internal:    f.InternalName(),
			External:    f.ExternalName(),
			Kind:        node.Kind().String(),
			Depth:       len(path) - 1,
			Public:      f.IsPublic(),
			Filter:      f.HasFilter(),
			Description: f.Description(),
			Fields:      len(node.Fields()),
		})
		return nil
	})

	return infos
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	count := 0
	_ = Walk(n, func(_ []string, _ Node) error {
		count++
		return nil
	})
	return count
}
