package validation

import (
	"fmt"
	"sort"
)

// StepDefinition is the part of a pipeline step that affects its shape
type StepDefinition struct {
	Node string
	GoTo string
}

// Definition maps step names to their definitions
type Definition map[string]StepDefinition

// ValidatePipeline checks that the start step exists, that every step runs a
// registered activity, that every go_to names a step and that no path from
// the start step loops. It should be called before executing the pipeline.
func ValidatePipeline(definition Definition, startStep string, isRegistered func(activity string) bool) error {
	if _, exists := definition[startStep]; !exists {
		return fmt.Errorf("start step not found in definition: %s", startStep)
	}

	// sorted so the first reported problem is stable
	names := make([]string, 0, len(definition))
	for name := range definition {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		stepDef := definition[name]
		if stepDef.Node == "" {
			return fmt.Errorf("step '%s' has no node", name)
		}
		if isRegistered != nil && !isRegistered(stepDef.Node) {
			return fmt.Errorf("step '%s' uses unknown activity: %s", name, stepDef.Node)
		}
		if stepDef.GoTo != "" {
			if _, exists := definition[stepDef.GoTo]; !exists {
				return fmt.Errorf("step '%s' goes to unknown step: %s", name, stepDef.GoTo)
			}
		}
	}

	// visited tracks the steps on the current path
	// globallyVisited tracks the steps already fully checked
	visited := make(map[string]bool)
	globallyVisited := make(map[string]bool)

	var dfs func(step string) error
	dfs = func(step string) error {
		if globallyVisited[step] {
			return nil
		}
		if visited[step] {
			return fmt.Errorf("circular pipeline definition detected at step: %s", step)
		}

		stepDef, exists := definition[step]
		if !exists {
			return fmt.Errorf("step definition not found: %s", step)
		}

		visited[step] = true
		defer func() {
			delete(visited, step)
			globallyVisited[step] = true
		}()

		if stepDef.GoTo != "" {
			return dfs(stepDef.GoTo)
		}
		return nil
	}

	return dfs(startStep)
}
