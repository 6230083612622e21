package activities

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/layout"
)

// PipelineState is what the optimization pipeline knows so far.
// Each activity receives the state and returns it with its own part filled in.
type PipelineState struct {
	Document  json.RawMessage  `json:"document,omitempty"`
	Workflow  *domain.Workflow `json:"workflow,omitempty"`
	Layout    *layout.Layout   `json:"layout,omitempty"`
	Analysis  *domain.Analysis `json:"analysis,omitempty"`
	Optimized *domain.Workflow `json:"optimized,omitempty"`
}

// ActivityContext holds the context passed to activities
type ActivityContext struct {
	WorkflowID string                 `json:"workflow_id"`
	StepName   string                 `json:"step_name"`
	Schema     map[string]interface{} `json:"schema,omitempty"`
	State      PipelineState          `json:"state"`
}

// ActivityResult carries the updated state and step metadata for the memo
type ActivityResult struct {
	State    PipelineState          `json:"state"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ActivityFunction is the type signature for all activity functions
type ActivityFunction func(ctx context.Context, activityCtx ActivityContext) (ActivityResult, error)

// ActivityInfo holds information about a registered activity
type ActivityInfo struct {
	Name     string
	Function ActivityFunction
	Options  ActivityOptions
}

// Container holds all registered activities
type Container struct {
	activities map[string]ActivityInfo
	mu         sync.RWMutex
}

var (
	containerInstance *Container
	containerOnce     sync.Once
)

// GetContainer returns the singleton instance of Container
func GetContainer() *Container {
	containerOnce.Do(func() {
		containerInstance = &Container{
			activities: make(map[string]ActivityInfo),
		}
	})
	return containerInstance
}

// RegisterActivity registers an activity function with a name.
// This is called by each activity's init() function.
func RegisterActivity(name string, fn ActivityFunction, opts ...func(*ActivityOptions)) {
	options := defaultActivityOptions()
	for _, opt := range opts {
		opt(&options)
	}

	container := GetContainer()
	container.mu.Lock()
	defer container.mu.Unlock()
	container.activities[name] = ActivityInfo{
		Name:     name,
		Function: fn,
		Options:  options,
	}
}

// GetActivityInfo returns the registration of an activity
func (c *Container) GetActivityInfo(name string) (ActivityInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, exists := c.activities[name]
	return info, exists
}

// GetAllActivityNames returns all registered activity names, sorted
func (c *Container) GetAllActivityNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.activities))
	for name := range c.activities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasActivity returns true if an activity with the given name is registered
func (c *Container) HasActivity(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.activities[name]
	return exists
}

// Convenience functions that use the singleton instance

func GetActivityInfo(name string) (ActivityInfo, bool) {
	return GetContainer().GetActivityInfo(name)
}

func GetAllActivityNames() []string {
	return GetContainer().GetAllActivityNames()
}

func HasActivity(name string) bool {
	return GetContainer().HasActivity(name)
}
