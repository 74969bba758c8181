package controller

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
)

func terminatedPod(revision string, phase corev1.PodPhase, exitCode int32, message string, finishedAt time.Time) corev1.Pod {
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Labels: labelsFor("proj", revision, "m1")},
		Status: corev1.PodStatus{
			Phase: phase,
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Name: "main",
					State: corev1.ContainerState{
						Terminated: &corev1.ContainerStateTerminated{
							ExitCode:   exitCode,
							Message:    message,
							FinishedAt: metav1.NewTime(finishedAt),
						},
					},
				},
			},
		},
	}
}

func TestExtractTerminatedStatusPicksLatestAndSkipsUnparsableMessage(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pods := []corev1.Pod{
		terminatedPod("rev1", corev1.PodFailed, 1, `{"type":"BadData","message":"bad","traceback":"tb"}`, base.Add(10*time.Second)),
		terminatedPod("rev1", corev1.PodFailed, 137, "not-json", base.Add(20*time.Second)),
	}
	status := &equinorv1.ModelStatus{}
	extractTerminatedStatus(logr.Discard(), status, labelsFor("proj", "rev1", "m1"), pods)

	if status.Code == nil || *status.Code != 137 {
		t.Fatalf("Code = %v, want 137 (from the later pod)", status.Code)
	}
	if status.ErrorType != "" || status.Message != "" || status.Traceback != "" {
		t.Errorf("expected no structured fields for unparsable message, got %+v", status)
	}
}

func TestExtractTerminatedStatusIgnoresNonFailedPods(t *testing.T) {
	base := time.Now()
	pods := []corev1.Pod{
		terminatedPod("rev1", corev1.PodRunning, 0, "", base),
	}
	status := &equinorv1.ModelStatus{}
	extractTerminatedStatus(logr.Discard(), status, labelsFor("proj", "rev1", "m1"), pods)
	if status.Code != nil {
		t.Errorf("Code = %v, want nil for a pod that is not Failed", status.Code)
	}
}

func TestExtractTerminatedStatusIgnoresNonMatchingLabels(t *testing.T) {
	pod := terminatedPod("rev2", corev1.PodFailed, 1, "", time.Now())
	status := &equinorv1.ModelStatus{}
	extractTerminatedStatus(logr.Discard(), status, labelsFor("proj", "rev1", "m1"), []corev1.Pod{pod})
	if status.Code != nil {
		t.Errorf("Code = %v, want nil for mismatched revision label", status.Code)
	}
}

func TestExtractTerminatedStatusParsesStructuredError(t *testing.T) {
	pods := []corev1.Pod{
		terminatedPod("rev1", corev1.PodFailed, 1, `{"type":"BadData","message":"bad","traceback":"tb"}`, time.Now()),
	}
	status := &equinorv1.ModelStatus{}
	extractTerminatedStatus(logr.Discard(), status, labelsFor("proj", "rev1", "m1"), pods)
	if status.ErrorType != "BadData" || status.Message != "bad" || status.Traceback != "tb" {
		t.Errorf("unexpected structured fields: %+v", status)
	}
}
