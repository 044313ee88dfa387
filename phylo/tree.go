// Package phylo provides phylogeny, trait, and abundance generation for the
// regional species pool. The Simulator contract (birth-death tree, Brownian
// trait diffusion, log-series abundances) can be satisfied in-process or by
// an external command speaking a small versioned line protocol.
package phylo

import (
	"fmt"
	"strings"
)

// Node is a single node in a phylogenetic tree. Branch length is the length
// of the edge above the node (toward the root).
type Node struct {
	Label    string
	Length   float64
	Trait    float64
	Children []*Node
}

// IsTip reports whether the node is a terminal taxon.
func (n *Node) IsTip() bool {
	return len(n.Children) == 0
}

// Tree is a rooted phylogenetic tree.
type Tree struct {
	Root *Node
}

// Tips returns the terminal nodes in left-to-right traversal order.
func (t *Tree) Tips() []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	var tips []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsTip() {
			tips = append(tips, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return tips
}

// NTips returns the number of terminal taxa.
func (t *Tree) NTips() int {
	return len(t.Tips())
}

// Height returns the maximum root-to-tip path length.
func (t *Tree) Height() float64 {
	if t == nil || t.Root == nil {
		return 0
	}
	var walk func(n *Node) float64
	walk = func(n *Node) float64 {
		max := 0.0
		for _, c := range n.Children {
			if h := walk(c); h > max {
				max = h
			}
		}
		return max + n.Length
	}
	// Root branch length is not part of tree height.
	max := 0.0
	for _, c := range t.Root.Children {
		if h := walk(c); h > max {
			max = h
		}
	}
	return max
}

// Newick returns the Newick serialization of the tree, terminated with ";".
func (t *Tree) Newick() string {
	if t == nil || t.Root == nil {
		return ";"
	}
	var b strings.Builder
	writeNewick(&b, t.Root)
	b.WriteString(";")
	return b.String()
}

func writeNewick(b *strings.Builder, n *Node) {
	if !n.IsTip() {
		b.WriteString("(")
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString(",")
			}
			writeNewick(b, c)
		}
		b.WriteString(")")
	}
	b.WriteString(n.Label)
	fmt.Fprintf(b, ":%g", n.Length)
}
