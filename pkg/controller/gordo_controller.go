// Package controller implements C4 through C8: the Gordo reconciler, the
// Model/workflow/pod status-derivation pipeline, and the manager wiring
// that drives it, per spec.md §4.4-§4.8.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	wfv1 "github.com/argoproj/argo-workflows/v3/pkg/apis/workflow/v1alpha1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
	"github.com/equinor/gordo-controller/pkg/config"
	"github.com/equinor/gordo-controller/pkg/gordoerrors"
	"github.com/equinor/gordo-controller/pkg/jobmanager"
)

const (
	// requeueInterval is the outer periodic reconcile cadence of spec.md §4.8.
	requeueInterval = 300 * time.Second
	// errorRequeueInterval backs off a failed reconcile instead of hot-looping.
	errorRequeueInterval = 30 * time.Second
)

// nowMillis mints the project-revision timestamp. It is a package var so
// tests can substitute a deterministic clock.
var nowMillis = func() string {
	return fmt.Sprintf("%d", time.Now().UnixMilli())
}

// GordoReconciler reconciles a Gordo object, and by extension the Models,
// Workflows, Pods and deploy Jobs derived from it.
type GordoReconciler struct {
	client.Client
	Config *config.Config
}

// Reconcile implements C4 (redeploy decision, status patch) followed by
// C5/C6/C7 for every Model owned by this Gordo, per spec.md §2's control
// flow C4 → C5 → C6 → C7.
func (r *GordoReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithValues("gordo", req.NamespacedName)
	ctx = log.IntoContext(ctx, logger)
	reconcileCountTotal.WithLabelValues(req.Name).Inc()

	var gordo equinorv1.Gordo
	if err := r.Get(ctx, req.NamespacedName, &gordo); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		logger.Error(recordKubeError("get gordo", err), "reconcile failed")
		reconcileGordoError.Inc()
		return ctrl.Result{RequeueAfter: errorRequeueInterval}, nil
	}

	if err := r.reconcileGordo(ctx, &gordo); err != nil {
		logger.Error(err, "reconcile failed")
		reconcileGordoError.Inc()
		return ctrl.Result{RequeueAfter: errorRequeueInterval}, nil
	}

	reconcileGordoSucceded.Inc()
	return ctrl.Result{RequeueAfter: requeueInterval}, nil
}

func (r *GordoReconciler) reconcileGordo(ctx context.Context, gordo *equinorv1.Gordo) error {
	logger := log.FromContext(ctx)
	if key, ok := missingIdentityKey(gordo); ok {
		logger.Info("skipping gordo with missing key", "error", gordoerrors.NewMissingKeyError(key).Error())
		recordWarning("missing_key")
		return nil
	}

	if gordo.Status.NeedsRedeploy(gordo.Generation) {
		if err := r.submitDeployJob(ctx, gordo); err != nil {
			var missingKey *gordoerrors.MissingKeyError
			if errors.As(err, &missingKey) {
				logger.Info("skipping deploy job submission with missing key", "error", missingKey.Error())
				recordWarning("missing_key")
				return nil
			}
			return err
		}
	}

	if gordo.Status == nil {
		return nil
	}

	var models equinorv1.ModelList
	if err := r.List(ctx, &models, client.InNamespace(gordo.Namespace)); err != nil {
		return recordKubeError("list models", err)
	}

	var workflows wfv1.WorkflowList
	if err := r.List(ctx, &workflows,
		client.InNamespace(gordo.Namespace),
		client.MatchingLabels{equinorv1.LabelProjectName: gordo.Name},
	); err != nil {
		return recordKubeError("list workflows", err)
	}

	var pods corev1.PodList
	if err := r.List(ctx, &pods,
		client.InNamespace(gordo.Namespace),
		client.MatchingLabels{equinorv1.LabelProjectName: gordo.Name},
	); err != nil {
		return recordKubeError("list pods", err)
	}

	for i := range models.Items {
		model := &models.Items[i]
		if !ownedBy(model, gordo) {
			continue
		}
		if err := r.correlateModel(ctx, model, workflows.Items, pods.Items); err != nil {
			return err
		}
	}

	// Re-read the Gordo's Models to fold in any status patches just applied,
	// so the aggregate count in the same reconcile reflects them.
	var refreshed equinorv1.ModelList
	if err := r.List(ctx, &refreshed, client.InNamespace(gordo.Namespace)); err != nil {
		return recordKubeError("list models", err)
	}
	return r.aggregate(ctx, gordo, refreshed.Items)
}

// missingIdentityKey reports the first of .metadata.name/.namespace/.uid
// that is absent on gordo, per spec.md §7's Missing-key taxonomy.
func missingIdentityKey(gordo *equinorv1.Gordo) (string, bool) {
	switch {
	case gordo.Name == "":
		return "metadata.name", true
	case gordo.Namespace == "":
		return "metadata.namespace", true
	case gordo.UID == "":
		return "metadata.uid", true
	default:
		return "", false
	}
}

// submitDeployJob implements C4's "yes" branch: replace the deploy job and
// merge-patch the Gordo's status with the new submission.
func (r *GordoReconciler) submitDeployJob(ctx context.Context, gordo *equinorv1.Gordo) error {
	revision := nowMillis()
	if _, err := jobmanager.Replace(ctx, r.Client, gordo, r.Config, revision); err != nil {
		return err
	}

	nModelsBuilt := 0
	if gordo.Status != nil {
		nModelsBuilt = gordo.Status.NModelsBuilt
	}

	original := gordo.DeepCopy()
	gordo.Status = &equinorv1.GordoStatus{
		NModels:      len(gordo.Spec.Config.Models),
		NModelsBuilt: nModelsBuilt,
		SubmissionStatus: equinorv1.GordoSubmissionStatus{
			Type:       equinorv1.GordoSubmissionSubmitted,
			Generation: ptr.To(gordo.Generation),
		},
		ProjectRevision: revision,
	}
	if err := r.Status().Patch(ctx, gordo, client.MergeFrom(original)); err != nil {
		return recordKubeError("patch gordo status", err)
	}
	return nil
}

// SetupWithManager wires Gordo as the primary watch and Model/Workflow as
// owned subjects whose changes enqueue the owning Gordo, per spec.md §4.8.
func (r *GordoReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&equinorv1.Gordo{}).
		Owns(&batchv1.Job{}).
		Watches(&equinorv1.Model{}, handler.EnqueueRequestsFromMapFunc(r.mapModelToGordo)).
		Watches(&wfv1.Workflow{}, handler.EnqueueRequestsFromMapFunc(r.mapWorkflowToGordo)).
		Complete(r)
}

func (r *GordoReconciler) mapModelToGordo(_ context.Context, obj client.Object) []reconcile.Request {
	model, ok := obj.(*equinorv1.Model)
	if !ok {
		return nil
	}
	var reqs []reconcile.Request
	for _, ref := range model.OwnerReferences {
		if ref.Kind == "Gordo" {
			reqs = append(reqs, reconcile.Request{
				NamespacedName: types.NamespacedName{Namespace: model.Namespace, Name: ref.Name},
			})
		}
	}
	return reqs
}

func (r *GordoReconciler) mapWorkflowToGordo(_ context.Context, obj client.Object) []reconcile.Request {
	wf, ok := obj.(*wfv1.Workflow)
	if !ok {
		return nil
	}
	name, ok := wf.Labels[equinorv1.LabelProjectName]
	if !ok || name == "" {
		return nil
	}
	return []reconcile.Request{{NamespacedName: types.NamespacedName{Namespace: wf.Namespace, Name: name}}}
}
