package feature

// Issue is one implementation task decomposed from an approved spec.
type Issue struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	ComplexityPassed  bool     `json:"complexity_passed"`
	DependsOn         []string `json:"depends_on,omitempty"`
	InterfaceContract string   `json:"interface_contract,omitempty"`
}

// HasDependencyCycle reports whether the issues' dependency edges contain
// a directed cycle. Dependency references that do not point at another
// issue in the set are dropped. The traversal is iterative and restarts
// from every unvisited node, so cycles in disconnected components are
// found regardless of iteration order.
func HasDependencyCycle(issues []Issue) bool {
	adjacency := make(map[string][]string, len(issues))
	known := make(map[string]struct{}, len(issues))
	for _, issue := range issues {
		known[issue.ID] = struct{}{}
	}
	for _, issue := range issues {
		for _, dep := range issue.DependsOn {
			if _, ok := known[dep]; ok {
				adjacency[issue.ID] = append(adjacency[issue.ID], dep)
			}
		}
	}

	visited := make(map[string]struct{}, len(issues))
	onPath := make(map[string]struct{}, len(issues))

	// frame tracks how far into a node's neighbor list the DFS has
	// progressed, replacing recursion with an explicit stack.
	type frame struct {
		id   string
		next int
	}

	for _, issue := range issues {
		if _, ok := visited[issue.ID]; ok {
			continue
		}

		stack := []frame{{id: issue.ID}}
		visited[issue.ID] = struct{}{}
		onPath[issue.ID] = struct{}{}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := adjacency[top.id]

			if top.next >= len(neighbors) {
				delete(onPath, top.id)
				stack = stack[:len(stack)-1]
				continue
			}

			dep := neighbors[top.next]
			top.next++

			if _, ok := onPath[dep]; ok {
				return true
			}
			if _, ok := visited[dep]; ok {
				continue
			}

			visited[dep] = struct{}{}
			onPath[dep] = struct{}{}
			stack = append(stack, frame{id: dep})
		}
	}

	return false
}
