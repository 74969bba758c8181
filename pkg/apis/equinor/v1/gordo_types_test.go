package v1

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGordoConfigUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		input string
		want  int
	}{
		"models key":            {`{"models":[{"name":"a"},{"name":"b"}]}`, 2},
		"machines alias":        {`{"machines":[{"name":"a"}]}`, 1},
		"models wins over both": {`{"models":[{"name":"a"}],"machines":[{"name":"a"},{"name":"b"}]}`, 1},
		"neither key":           {`{}`, 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var cfg GordoConfig
			if err := json.Unmarshal([]byte(tc.input), &cfg); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := len(cfg.Models); got != tc.want {
				t.Errorf("len(Models) = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGordoStatusNeedsRedeploy(t *testing.T) {
	gen5 := int64(5)
	cases := map[string]struct {
		status *GordoStatus
		gen    int64
		want   bool
	}{
		"no status":            {nil, 5, true},
		"same generation":      {&GordoStatus{SubmissionStatus: GordoSubmissionStatus{Generation: &gen5}}, 5, false},
		"different generation": {&GordoStatus{SubmissionStatus: GordoSubmissionStatus{Generation: &gen5}}, 6, true},
		"nil generation":       {&GordoStatus{SubmissionStatus: GordoSubmissionStatus{Generation: nil}}, 5, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := tc.status.NeedsRedeploy(tc.gen); got != tc.want {
				t.Errorf("NeedsRedeploy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestModelPhaseUnmarshalJSON(t *testing.T) {
	cases := map[string]ModelPhase{
		`"Unknown"`:    ModelPhaseUnknown,
		`"unknown"`:    ModelPhaseUnknown,
		`""`:           ModelPhaseUnknown,
		`"InProgress"`: ModelPhaseInProgress,
		`"inProgress"`: ModelPhaseInProgress,
		`"Succeeded"`:  ModelPhaseSucceeded,
		`"succeeded"`:  ModelPhaseSucceeded,
		`"Failed"`:     ModelPhaseFailed,
		`"failed"`:     ModelPhaseFailed,
	}
	for input, want := range cases {
		var got ModelPhase
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if got != want {
			t.Errorf("unmarshal(%s) = %v, want %v", input, got, want)
		}
	}
}

func TestModelPhaseUnmarshalJSONRejectsUnknown(t *testing.T) {
	var p ModelPhase
	if err := json.Unmarshal([]byte(`"Bogus"`), &p); err == nil {
		t.Fatal("expected error for unrecognized phase")
	}
}

func TestModelEffectiveStatus(t *testing.T) {
	m := &Model{}
	if diff := cmp.Diff(ModelStatus{Phase: ModelPhaseUnknown}, m.EffectiveStatus()); diff != "" {
		t.Errorf("EffectiveStatus() mismatch (-want +got):\n%s", diff)
	}

	m.Status = &ModelStatus{Phase: ModelPhaseSucceeded}
	if diff := cmp.Diff(ModelStatus{Phase: ModelPhaseSucceeded}, m.EffectiveStatus()); diff != "" {
		t.Errorf("EffectiveStatus() mismatch (-want +got):\n%s", diff)
	}
}
