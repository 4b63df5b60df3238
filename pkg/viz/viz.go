// Package viz renders a bptree.Tree snapshot as Graphviz DOT source, for
// visual debugging. It walks the tree only through Tree.Snapshot and has
// no dependency on the core's internals.
//
// No Graphviz client library appears anywhere in the example corpus this
// project was grounded on, so this stays on text/template and io.Writer;
// that absence, not a preference for the standard library, is why this
// one collaborator has no third-party dependency.
package viz

import (
	"fmt"
	"io"
	"text/template"

	"github.com/cedarkv/bptree/pkg/bptree"
)

const dotTemplate = `digraph BPTree {
	rankdir=TB;
	node [shape=record, fontname="monospace"];
{{- range .Nodes}}
	n{{.ID}} [label="{{.Label}}"{{if .IsLeaf}} style=filled fillcolor=lightyellow{{end}}];
{{- end}}
{{- range .ChildEdges}}
	n{{.From}} -> n{{.To}};
{{- end}}
{{- range .NextEdges}}
	n{{.From}} -> n{{.To}} [style=dashed, color=blue, constraint=false];
{{- end}}
}
`

type dotNode struct {
	ID     uint32
	Label  string
	IsLeaf bool
}

type dotEdge struct {
	From, To uint32
}

type dotData struct {
	Nodes      []dotNode
	ChildEdges []dotEdge
	NextEdges  []dotEdge
}

var tmpl = template.Must(template.New("bptree").Parse(dotTemplate))

// Write renders snap as Graphviz DOT source to w. keyLabel formats a key
// for display (for example strconv.Itoa for int keys).
func Write[K any, V any](w io.Writer, snap *bptree.SnapshotNode[K, V], keyLabel func(K) string) error {
	data := dotData{}

	type walkEntry struct {
		node   *bptree.SnapshotNode[K, V]
		parent *bptree.SnapshotNode[K, V]
	}

	ids := map[*bptree.SnapshotNode[K, V]]uint32{}
	var next uint32

	if snap != nil {
		stack := []walkEntry{{node: snap}}
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			next++
			id := next
			ids[e.node] = id

			keys := make([]string, len(e.node.Keys))
			for i, k := range e.node.Keys {
				keys[i] = keyLabel(k)
			}
			label := fmt.Sprintf("%v", keys)

			data.Nodes = append(data.Nodes, dotNode{ID: id, Label: label, IsLeaf: e.node.IsLeaf})
			if e.parent != nil {
				data.ChildEdges = append(data.ChildEdges, dotEdge{From: ids[e.parent], To: id})
			}

			for i := len(e.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, walkEntry{node: e.node.Children[i], parent: e.node})
			}
		}

		for node, id := range ids {
			if node.IsLeaf && node.NextLeaf != nil {
				data.NextEdges = append(data.NextEdges, dotEdge{From: id, To: ids[node.NextLeaf]})
			}
		}
	}

	return tmpl.Execute(w, data)
}
