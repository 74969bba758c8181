package controller

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
	"github.com/equinor/gordo-controller/pkg/gordoerrors"
)

const mainContainerName = "main"

// terminatedMessage is the structured-error shape a "main" container's
// termination message is expected to carry, per spec.md §4.6.
type terminatedMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Traceback string `json:"traceback"`
}

// podMatches implements the three-label match predicate of spec.md §4.6.
func podMatches(pod *corev1.Pod, modelLabels map[string]string) bool {
	if pod.Labels[equinorv1.LabelProjectName] == "" || pod.Labels[equinorv1.LabelProjectName] != modelLabels[equinorv1.LabelProjectName] {
		return false
	}
	podRevision, _ := equinorv1.ProjectRevision(pod.Labels)
	modelRevision, _ := equinorv1.ProjectRevision(modelLabels)
	if podRevision == "" || podRevision != modelRevision {
		return false
	}
	if pod.Labels[equinorv1.LabelModelName] == "" || pod.Labels[equinorv1.LabelModelName] != modelLabels[equinorv1.LabelModelName] {
		return false
	}
	return true
}

// extractTerminatedStatus implements C6: among Pods matching modelLabels
// and reporting status.phase=Failed, it picks the latest-finished "main"
// container termination and fills status's code/error_type/message/
// traceback from it. Missing timestamps compare as "-inf" so an entry
// with no finishedAt never wins over one that has it.
func extractTerminatedStatus(logger logr.Logger, status *equinorv1.ModelStatus, modelLabels map[string]string, pods []corev1.Pod) {
	var latest *corev1.ContainerStateTerminated
	var latestTime time.Time
	found := false

	for i := range pods {
		pod := &pods[i]
		if pod.Status.Phase != corev1.PodFailed {
			continue
		}
		if !podMatches(pod, modelLabels) {
			continue
		}
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.Name != mainContainerName || cs.State.Terminated == nil {
				continue
			}
			term := cs.State.Terminated
			t := term.FinishedAt.Time
			if !found || t.After(latestTime) {
				latest = term
				latestTime = t
				found = true
			}
		}
	}

	if !found {
		return
	}

	code := latest.ExitCode
	status.Code = &code

	msg := bytes.TrimRight([]byte(latest.Message), " \t\r\n")
	if len(msg) == 0 {
		return
	}

	var parsed terminatedMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		warning := gordoerrors.NewParseWarningError(err)
		logger.Info("no structured cause available", "error", warning.Error())
		recordWarning("parse_terminated_message")
		return
	}
	status.ErrorType = parsed.Type
	status.Message = parsed.Message
	status.Traceback = parsed.Traceback
}
