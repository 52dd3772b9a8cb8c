package printer

import (
	"strings"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/mozilla-ai/convtree/internal/converter"
)

// Tree draws the converter tree rooted at n as a box diagram, one box per node labelled "name:kind".
func Tree(n converter.Node) string {
	if n == nil {
		return ""
	}

	t := tree.NewTree(label(n))
	grow(t, n)
	return strings.TrimRight(t.String(), "\n") + "\n"
}

func grow(t *tree.Tree, n converter.Node) {
	for _, child := range n.Fields() {
		grow(t.AddChild(label(child)), child)
	}
}

func label(n converter.Node) tree.NodeString {
	return tree.NodeString(n.ExternalName() + ":" + n.Kind().String())
}
