package normalize_test

import (
	"fmt"

	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/normalize"
)

func ExampleNormalize() {
	doc := &graph.Document{
		Nodes:  []graph.DocNode{{ID: "api", Group: "backend"}, {ID: "db", Type: "store"}},
		Edges:  []graph.DocEdge{{Source: "api", Target: "db"}, {Source: "api", Target: "cache"}},
		Groups: []graph.DocGroup{{ID: "backend", Label: "Backend"}},
	}

	g, report := normalize.Normalize(doc, normalize.Options{})

	for _, n := range g.Nodes {
		fmt.Println(n.ID, n.Type, n.IsGroup)
	}
	fmt.Println("edges:", len(g.Edges), g.Edges[0].ID)
	for _, issue := range report.Issues {
		fmt.Println(issue.Kind, issue.Subject)
	}
	// Output:
	// backend group true
	// api default false
	// db store false
	// edges: 1 api-db
	// dangling-edge api-cache
}
