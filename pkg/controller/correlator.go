package controller

import (
	"context"

	wfv1 "github.com/argoproj/argo-workflows/v3/pkg/apis/workflow/v1alpha1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
)

// workflowMatches implements the label-match predicate of spec.md §4.5: a
// Workflow matches a Model when both carry the same project-name and
// project-revision; if either also carries project-workflow, both must
// agree on it too.
func workflowMatches(wf *wfv1.Workflow, modelLabels map[string]string) bool {
	wfName := wf.Labels[equinorv1.LabelProjectName]
	modelName := modelLabels[equinorv1.LabelProjectName]
	if wfName == "" || wfName != modelName {
		return false
	}

	wfRevision, _ := equinorv1.ProjectRevision(wf.Labels)
	modelRevision, _ := equinorv1.ProjectRevision(modelLabels)
	if wfRevision == "" || wfRevision != modelRevision {
		return false
	}

	wfWorkflowID, wfHas := wf.Labels[equinorv1.LabelProjectWorkflow]
	modelWorkflowID, modelHas := modelLabels[equinorv1.LabelProjectWorkflow]
	if wfHas || modelHas {
		return wfWorkflowID == modelWorkflowID
	}
	return true
}

// correlateModel runs C5 for a single Model: it invalidates a stale
// status, then derives and, if changed, patches the intended phase from
// the set of matching workflows. pods is the Pod snapshot for the
// Gordo's namespace, used by C6 when the intended phase is Failed.
func (r *GordoReconciler) correlateModel(ctx context.Context, model *equinorv1.Model, workflows []wfv1.Workflow, pods []corev1.Pod) error {
	logger := log.FromContext(ctx)

	labelRevision, _ := equinorv1.ProjectRevision(model.Labels)
	current := model.EffectiveStatus()

	if current.Revision != "" && current.Revision != labelRevision {
		reset := equinorv1.DefaultModelStatus(labelRevision)
		return r.patchModelStatus(ctx, model, reset)
	}

	if current.Phase.IsTerminal() {
		return nil
	}

	var matched []wfv1.Workflow
	for i := range workflows {
		if workflowMatches(&workflows[i], model.Labels) {
			matched = append(matched, workflows[i])
		}
	}

	intended := intendedPhase(matched)
	if intended == "" || intended == current.Phase {
		return nil
	}

	next := current
	next.Phase = intended
	if labelRevision != "" {
		next.Revision = labelRevision
	}

	if intended == equinorv1.ModelPhaseFailed {
		extractTerminatedStatus(logger, &next, model.Labels, pods)
	}

	logger.V(1).Info("model phase transition", "model", model.Name, "from", current.Phase, "to", intended)
	return r.patchModelStatus(ctx, model, &next)
}

// intendedPhase derives C5's disjunction: Failed takes precedence over
// Succeeded, an empty workflow set never yields Succeeded, and Omitted
// workflows never contribute to either side.
func intendedPhase(workflows []wfv1.Workflow) equinorv1.ModelPhase {
	if len(workflows) == 0 {
		return ""
	}

	sawNonOmitted := false
	allSucceeded := true
	for _, wf := range workflows {
		switch wf.Status.Phase {
		case wfv1.WorkflowError, wfv1.WorkflowFailed, "Skipped":
			return equinorv1.ModelPhaseFailed
		case "Omitted":
			continue
		case wfv1.WorkflowSucceeded:
			sawNonOmitted = true
		default:
			sawNonOmitted = true
			allSucceeded = false
		}
	}

	if sawNonOmitted && allSucceeded {
		return equinorv1.ModelPhaseSucceeded
	}
	return ""
}

func (r *GordoReconciler) patchModelStatus(ctx context.Context, model *equinorv1.Model, status *equinorv1.ModelStatus) error {
	original := model.DeepCopy()
	model.Status = status
	if err := r.Status().Patch(ctx, model, client.MergeFrom(original)); err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}
		return recordKubeError("patch model status", err)
	}
	return nil
}
