package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/planrun/planrun/internal/plan"
)

func TestSummarize(t *testing.T) {
	result := &plan.Result{
		RunID:   "run-1",
		Success: false,
		Results: map[string]plan.TaskResult{
			"find": {TaskID: "find", Success: true, Duration: 120 * time.Millisecond},
			"send": {TaskID: "send", Error: "quota exceeded", Duration: 40 * time.Millisecond},
			"sync": {TaskID: "sync", Error: `service "drive" requires authentication`, RequiresAuth: true},
		},
		Errors: map[string]string{
			"send":  "quota exceeded",
			"sync":  `service "drive" requires authentication`,
			"after": "stranded: dependencies can no longer be satisfied",
		},
		Duration: time.Second,
	}

	out := summarize(result)

	assert.Contains(t, out, "run run-1: failed")
	assert.Contains(t, out, "ok    find")
	assert.Contains(t, out, "fail  send")
	assert.Contains(t, out, "auth  sync")
	assert.Contains(t, out, "stuck after")
}

func TestSummarizeSuccess(t *testing.T) {
	result := &plan.Result{
		RunID:   "run-2",
		Success: true,
		Results: map[string]plan.TaskResult{
			"only": {TaskID: "only", Success: true, Duration: 5 * time.Millisecond},
		},
		Duration: 10 * time.Millisecond,
	}

	out := summarize(result)
	assert.Contains(t, out, "run run-2: success")
	assert.Contains(t, out, "ok    only")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("debug").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "info", parseLevel("verbose").String())
	assert.Equal(t, "error", parseLevel("error").String())
}
