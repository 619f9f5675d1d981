package episodes

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/codegraphd/codegraphd/internal/graphmodel"
)

const learningConfidenceThreshold = 0.7

// ReflectInput is reflect's normalized argument set.
type ReflectInput struct {
	ProjectID string
	TaskID    string
	AgentID   string
	Limit     int
}

// Hotspot names a file edited repeatedly within the reflected window.
type Hotspot struct {
	FileID     string
	EditCount  int
	Confidence float64
}

// RiskyDecision is a DECISION episode immediately followed by an ERROR
// episode from the same agent.
type RiskyDecision struct {
	DecisionID string
	ErrorID    string
	Confidence float64
}

// WastedReading flags an OBSERVATION repeated verbatim several times,
// suggesting the agent re-read the same thing without acting on it.
type WastedReading struct {
	Content    string
	Count      int
	Confidence float64
}

// ReflectResult is reflect's output: the detected patterns plus the
// REFLECTION episode and any LEARNING nodes it produced.
type ReflectResult struct {
	Hotspots       []Hotspot
	RiskyDecisions []RiskyDecision
	WastedReading  []WastedReading
	Reflection     graphmodel.Episode
	Learnings      []graphmodel.Learning
}

// Reflect scans recent episodes for a task (or the whole project when
// TaskID is empty; AgentID only authors the REFLECTION) looking for three
// patterns: edit hotspots, decisions that were immediately followed by an
// error, and repeated identical observations. A REFLECTION episode records
// the findings and is linked to the edit and observation episodes behind
// them via DERIVED_FROM; each pattern scoring at or above
// learningConfidenceThreshold becomes a LEARNING node, linked via
// APPLIES_TO where the pattern names a target (the hotspot file or the
// decision episode).
func (e *Engine) Reflect(ctx context.Context, in ReflectInput) (ReflectResult, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}

	episodes, err := e.graph.QueryEpisodes(ctx, in.ProjectID, nil, in.TaskID, nil)
	if err != nil {
		return ReflectResult{}, err
	}
	if len(episodes) > limit {
		episodes = episodes[:limit]
	}
	sort.Slice(episodes, func(i, j int) bool { return episodes[i].Timestamp.Before(episodes[j].Timestamp) })

	var result ReflectResult

	editCounts := make(map[string]int)
	editSources := make(map[string][]string)
	for _, ep := range episodes {
		if ep.Type != graphmodel.EpisodeEdit {
			continue
		}
		entities, _ := e.graph.EpisodeEntities(ctx, ep.ID)
		for _, fileID := range entities {
			editCounts[fileID]++
			editSources[fileID] = append(editSources[fileID], ep.ID)
		}
	}
	for fileID, count := range editCounts {
		if count < 3 {
			continue
		}
		result.Hotspots = append(result.Hotspots, Hotspot{
			FileID:     fileID,
			EditCount:  count,
			Confidence: minFloat(1.0, float64(count)/5.0),
		})
	}

	for i := 0; i+1 < len(episodes); i++ {
		cur, next := episodes[i], episodes[i+1]
		if cur.Type == graphmodel.EpisodeDecision && next.Type == graphmodel.EpisodeError && next.AgentID == cur.AgentID {
			result.RiskyDecisions = append(result.RiskyDecisions, RiskyDecision{
				DecisionID: cur.ID,
				ErrorID:    next.ID,
				Confidence: 0.8,
			})
		}
	}

	observationCounts := make(map[string]int)
	observationSources := make(map[string][]string)
	for _, ep := range episodes {
		if ep.Type != graphmodel.EpisodeObservation {
			continue
		}
		observationCounts[ep.Content]++
		observationSources[ep.Content] = append(observationSources[ep.Content], ep.ID)
	}
	for content, count := range observationCounts {
		if count < 3 {
			continue
		}
		result.WastedReading = append(result.WastedReading, WastedReading{
			Content:    content,
			Count:      count,
			Confidence: minFloat(1.0, float64(count)/5.0),
		})
	}

	reflectionContent := summarizeReflection(result)
	ep, err := e.Add(ctx, AddInput{
		ProjectID: in.ProjectID,
		AgentID:   in.AgentID,
		SessionID: "reflect",
		TaskID:    in.TaskID,
		Type:      string(graphmodel.EpisodeReflection),
		Content:   reflectionContent,
	})
	if err != nil {
		return ReflectResult{}, err
	}
	result.Reflection = ep

	for _, source := range append(append([]string{}, flattenSources(editSources)...), flattenSources(observationSources)...) {
		_ = e.graph.CreateEdge(ctx, graphmodel.RelDerivedFrom, ep.ID, source, nil)
	}

	for _, h := range result.Hotspots {
		if h.Confidence < learningConfidenceThreshold {
			continue
		}
		l := graphmodel.Learning{
			ID:          uuid.NewString(),
			Content:     fmt.Sprintf("file edited %d times in this window; consider splitting the change or pairing on it", h.EditCount),
			Confidence:  h.Confidence,
			ExtractedAt: time.Now(),
			ProjectID:   in.ProjectID,
		}
		if err := e.graph.UpsertLearning(ctx, l); err != nil {
			return result, err
		}
		_ = e.graph.CreateEdge(ctx, graphmodel.RelAppliesTo, l.ID, h.FileID, nil)
		result.Learnings = append(result.Learnings, l)
	}
	for _, r := range result.RiskyDecisions {
		if r.Confidence < learningConfidenceThreshold {
			continue
		}
		l := graphmodel.Learning{
			ID:          uuid.NewString(),
			Content:     "a decision here was followed immediately by an error; revisit the reasoning before repeating it",
			Confidence:  r.Confidence,
			ExtractedAt: time.Now(),
			ProjectID:   in.ProjectID,
		}
		if err := e.graph.UpsertLearning(ctx, l); err != nil {
			return result, err
		}
		_ = e.graph.CreateEdge(ctx, graphmodel.RelAppliesTo, l.ID, r.DecisionID, nil)
		result.Learnings = append(result.Learnings, l)
	}
	for _, w := range result.WastedReading {
		if w.Confidence < learningConfidenceThreshold {
			continue
		}
		l := graphmodel.Learning{
			ID:         uuid.NewString(),
			Content:    fmt.Sprintf("the same observation was recorded %d times without follow-up; act on it or note why it is re-read", w.Count),
			Confidence: w.Confidence, ExtractedAt: time.Now(), ProjectID: in.ProjectID,
		}
		if err := e.graph.UpsertLearning(ctx, l); err != nil {
			return result, err
		}
		result.Learnings = append(result.Learnings, l)
	}

	return result, nil
}

func flattenSources(m map[string][]string) []string {
	var out []string
	for _, ids := range m {
		out = append(out, ids...)
	}
	return out
}

func summarizeReflection(r ReflectResult) string {
	return fmt.Sprintf("reflection: %d hotspot file(s), %d risky decision(s), %d wasted-reading pattern(s)",
		len(r.Hotspots), len(r.RiskyDecisions), len(r.WastedReading))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
