package main

import (
	"context"

	"github.com/codegraphd/codegraphd/internal/episodes"
)

// episodeReflector adapts *episodes.Engine's struct-argument Reflect to
// the positional-argument coordination.Reflector interface, the one
// conversion task_update's CompleteTask needs and episodes.Engine doesn't
// provide directly.
type episodeReflector struct {
	engine *episodes.Engine
}

func (r *episodeReflector) Reflect(ctx context.Context, projectID, taskID, agentID string) error {
	_, err := r.engine.Reflect(ctx, episodes.ReflectInput{
		ProjectID: projectID,
		TaskID:    taskID,
		AgentID:   agentID,
	})
	return err
}
