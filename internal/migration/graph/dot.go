package graph

import (
	"fmt"
	"strings"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// ToDOT renders an audit dependency graph as Graphviz DOT.
func ToDOT(g domain.DependencyGraph, title string) string {
	var b strings.Builder
	b.WriteString("digraph G {\n  rankdir=LR;\n  node [shape=box, style=rounded];\n")
	if title != "" {
		fmt.Fprintf(&b, "  labelloc=\"t\"; label=%s; fontname=\"Helvetica\";\n", quote(title))
	}

	for _, n := range g.Nodes {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		fmt.Fprintf(&b, "  %s [label=%s, %s];\n", quote(n.ID), quote(label), nodeStyle(n.Type))
	}

	for i, e := range g.Edges {
		fmt.Fprintf(&b, "  %s -> %s [label=%s, tooltip=\"edge#%d\"];\n",
			quote(e.Source), quote(e.Target), quote(e.Label), i)
	}

	b.WriteString("}\n")
	return b.String()
}

func nodeStyle(kind string) string {
	switch strings.ToLower(kind) {
	case "entry":
		return `shape=box,style="rounded,filled",fillcolor="#d4edda"`
	case "database", "db", "table":
		return `shape=cylinder,style="filled",fillcolor="#fff3cd"`
	default:
		return `shape=box,style="rounded,filled",fillcolor="#eef6ff"`
	}
}
