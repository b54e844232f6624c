package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeProjectAdd    = "project:add"
	TypeProjectDelete = "project:delete"
	TypeTensionSet    = "tension:set"
	TypeTensionDelete = "tension:delete"
)

// ProjectPayload carries a project write
type ProjectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Weight      int32  `json:"weight,omitempty"`
}

// TensionPayload carries a tension write
type TensionPayload struct {
	ID      int32 `json:"id"`
	Tension int32 `json:"tension,omitempty"`
}

func newTask(typename string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(typename, data, asynq.MaxRetry(5)), nil
}

// NewProjectAddTask creates a task that inserts a project
func NewProjectAddTask(p ProjectPayload) (*asynq.Task, error) {
	return newTask(TypeProjectAdd, p)
}

// NewProjectDeleteTask creates a task that removes a project by name
func NewProjectDeleteTask(name string) (*asynq.Task, error) {
	return newTask(TypeProjectDelete, ProjectPayload{Name: name})
}

// NewTensionSetTask creates a task that writes a faction's tension
func NewTensionSetTask(id, tension int32) (*asynq.Task, error) {
	return newTask(TypeTensionSet, TensionPayload{ID: id, Tension: tension})
}

// NewTensionDeleteTask creates a task that removes a faction's tension
func NewTensionDeleteTask(id int32) (*asynq.Task, error) {
	return newTask(TypeTensionDelete, TensionPayload{ID: id})
}

// ParseProjectPayload parses a project task payload
func ParseProjectPayload(task *asynq.Task) (ProjectPayload, error) {
	var payload ProjectPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// ParseTensionPayload parses a tension task payload
func ParseTensionPayload(task *asynq.Task) (TensionPayload, error) {
	var payload TensionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
