package controller

import (
	"context"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
)

// aggregate implements C7: count the Models owned by gordo whose
// project-revision label matches gordo's current status and whose phase
// is Succeeded, and merge-patch n_models/n_models_built if the count
// changed.
func (r *GordoReconciler) aggregate(ctx context.Context, gordo *equinorv1.Gordo, models []equinorv1.Model) error {
	if gordo.Status == nil {
		return nil
	}

	built := countBuilt(gordo, models)
	nModels := len(gordo.Spec.Config.Models)

	if built == gordo.Status.NModelsBuilt && nModels == gordo.Status.NModels {
		return nil
	}

	original := gordo.DeepCopy()
	gordo.Status.NModels = nModels
	gordo.Status.NModelsBuilt = built
	if err := r.Status().Patch(ctx, gordo, client.MergeFrom(original)); err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}
		return recordKubeError("patch gordo aggregate", err)
	}
	return nil
}

func countBuilt(gordo *equinorv1.Gordo, models []equinorv1.Model) int {
	count := 0
	for i := range models {
		m := &models[i]
		if !ownedBy(m, gordo) {
			continue
		}
		revision, ok := equinorv1.ProjectRevision(m.Labels)
		if !ok || revision != gordo.Status.ProjectRevision {
			continue
		}
		if m.EffectiveStatus().Phase == equinorv1.ModelPhaseSucceeded {
			count++
		}
	}
	return count
}

func ownedBy(model *equinorv1.Model, gordo *equinorv1.Gordo) bool {
	for _, ref := range model.OwnerReferences {
		if ref.Kind == "Gordo" && ref.Name == gordo.Name {
			return true
		}
	}
	return false
}
