package schema

import (
	"encoding/json"
	"fmt"
)

// TaskGroup classifies the nature of a main-thread task. The set is closed.
type TaskGroup int

// All task groups, in display order.
const (
	ParseHTML TaskGroup = iota
	StyleLayout
	PaintCompositeRender
	ScriptParseCompile
	ScriptEvaluation
	GarbageCollection
	OtherGroup

	// TaskGroupCount is the number of task groups.
	TaskGroupCount = int(OtherGroup) + 1
)

var taskGroupIDs = [TaskGroupCount]string{
	ParseHTML:            "parseHTML",
	StyleLayout:          "styleLayout",
	PaintCompositeRender: "paintCompositeRender",
	ScriptParseCompile:   "scriptParseCompile",
	ScriptEvaluation:     "scriptEvaluation",
	GarbageCollection:    "garbageCollection",
	OtherGroup:           "other",
}

var taskGroupLabels = [TaskGroupCount]string{
	ParseHTML:            "Parse HTML & CSS",
	StyleLayout:          "Style & Layout",
	PaintCompositeRender: "Rendering",
	ScriptParseCompile:   "Script Parsing & Compilation",
	ScriptEvaluation:     "Script Evaluation",
	GarbageCollection:    "Garbage Collection",
	OtherGroup:           "Other",
}

// AllTaskGroups returns every task group in display order.
func AllTaskGroups() []TaskGroup {
	groups := make([]TaskGroup, TaskGroupCount)
	for i := range groups {
		groups[i] = TaskGroup(i)
	}
	return groups
}

// ParseTaskGroup resolves a task group from its identifier.
func ParseTaskGroup(id string) (TaskGroup, error) {
	for i, gid := range taskGroupIDs {
		if gid == id {
			return TaskGroup(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTaskGroup, id)
}

// Valid reports whether g is one of the known task groups.
func (g TaskGroup) Valid() bool {
	return g >= 0 && int(g) < TaskGroupCount
}

// String returns the stable identifier of the group.
func (g TaskGroup) String() string {
	if !g.Valid() {
		return fmt.Sprintf("TaskGroup(%d)", int(g))
	}
	return taskGroupIDs[g]
}

// Label returns the human-readable name of the group.
func (g TaskGroup) Label() string {
	if !g.Valid() {
		return g.String()
	}
	return taskGroupLabels[g]
}

// IsScript reports whether the group counts towards bootup time.
func (g TaskGroup) IsScript() bool {
	return g == ScriptEvaluation || g == ScriptParseCompile
}

// MarshalText implements encoding.TextMarshaler.
func (g TaskGroup) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTaskGroup, int(g))
	}
	return []byte(taskGroupIDs[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *TaskGroup) UnmarshalText(text []byte) error {
	parsed, err := ParseTaskGroup(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// GroupTimings holds accumulated milliseconds per task group for one URL.
type GroupTimings [TaskGroupCount]float64

// Get returns the time for g, or 0 when g is unknown.
func (t GroupTimings) Get(g TaskGroup) float64 {
	if !g.Valid() {
		return 0
	}
	return t[g]
}

// Total sums every group.
func (t GroupTimings) Total() float64 {
	var total float64
	for _, v := range t {
		total += v
	}
	return total
}

// Scaled returns a copy with every group multiplied by m.
func (t GroupTimings) Scaled(m float64) GroupTimings {
	var out GroupTimings
	for i, v := range t {
		out[i] = v * m
	}
	return out
}

// MarshalJSON encodes the non-zero groups as an object keyed by group id.
func (t GroupTimings) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, TaskGroupCount)
	for i, v := range t {
		if v != 0 {
			m[taskGroupIDs[i]] = v
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by group id.
func (t *GroupTimings) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out GroupTimings
	for id, v := range m {
		g, err := ParseTaskGroup(id)
		if err != nil {
			return err
		}
		out[g] = v
	}
	*t = out
	return nil
}
