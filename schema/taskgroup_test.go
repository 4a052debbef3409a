package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/huangsam/bootup/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskGroup(t *testing.T) {
	for _, g := range schema.AllTaskGroups() {
		parsed, err := schema.ParseTaskGroup(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
	}

	_, err := schema.ParseTaskGroup("scriptEval")
	assert.ErrorIs(t, err, schema.ErrUnknownTaskGroup)
}

func TestTaskGroupIsScript(t *testing.T) {
	assert.True(t, schema.ScriptEvaluation.IsScript())
	assert.True(t, schema.ScriptParseCompile.IsScript())
	assert.False(t, schema.ParseHTML.IsScript())
	assert.False(t, schema.GarbageCollection.IsScript())
	assert.False(t, schema.OtherGroup.IsScript())
}

func TestTaskGroupInvalid(t *testing.T) {
	g := schema.TaskGroup(42)
	assert.False(t, g.Valid())
	assert.Equal(t, "TaskGroup(42)", g.String())
	_, err := g.MarshalText()
	assert.ErrorIs(t, err, schema.ErrUnknownTaskGroup)
}

func TestTaskGroupJSON(t *testing.T) {
	var task schema.MainThreadTask
	err := json.Unmarshal([]byte(`{"attributable_urls":["a.js"],"group":"styleLayout","self_time":4}`), &task)
	require.NoError(t, err)
	assert.Equal(t, schema.StyleLayout, task.Group)

	err = json.Unmarshal([]byte(`{"group":"layout"}`), &task)
	assert.ErrorIs(t, err, schema.ErrUnknownTaskGroup)
}

func TestGroupTimings(t *testing.T) {
	var timings schema.GroupTimings
	timings[schema.ScriptEvaluation] = 10
	timings[schema.ParseHTML] = 5

	assert.Equal(t, 15.0, timings.Total())
	assert.Equal(t, 10.0, timings.Get(schema.ScriptEvaluation))
	assert.Equal(t, 0.0, timings.Get(schema.TaskGroup(-1)))

	scaled := timings.Scaled(4)
	assert.Equal(t, 40.0, scaled[schema.ScriptEvaluation])
	assert.Equal(t, 10.0, timings[schema.ScriptEvaluation], "original is untouched")

	data, err := json.Marshal(timings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scriptEvaluation":10,"parseHTML":5}`, string(data))

	var decoded schema.GroupTimings
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, timings, decoded)
}
