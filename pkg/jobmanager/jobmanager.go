// Package jobmanager implements C3: deleting a Gordo's prior deploy jobs,
// waiting out their disappearance, and creating the replacement, per
// spec.md §4.3.
package jobmanager

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	batchv1 "k8s.io/api/batch/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
	"github.com/equinor/gordo-controller/pkg/config"
	"github.com/equinor/gordo-controller/pkg/deployjob"
	"github.com/equinor/gordo-controller/pkg/gordoerrors"
)

// pollInterval is the cadence at which a deleted job's disappearance is
// polled, per spec.md §4.3's "poll its existence at a 1 s cadence".
const pollInterval = time.Second

// Replace deletes every Job labelled gordoProjectName=<gordo.Name> in
// gordo's namespace, waits for each to disappear from the API, and then
// creates the replacement built by deployjob.Build with the caller-minted
// project-revision passed as revision. It returns the new Job.
//
// Deletions proceed concurrently across jobs in the set, matching the
// teacher's use of errgroup for fan-out API calls that must all succeed
// before the next step runs.
func Replace(ctx context.Context, c client.Client, gordo *equinorv1.Gordo, cfg *config.Config, revision string) (*batchv1.Job, error) {
	var jobs batchv1.JobList
	if err := c.List(ctx, &jobs,
		client.InNamespace(gordo.Namespace),
		client.MatchingLabels{equinorv1.DeployJobLabel: gordo.Name},
	); err != nil {
		return nil, gordoerrors.NewKubeAPIError("list deploy jobs", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range jobs.Items {
		job := jobs.Items[i]
		g.Go(func() error {
			return deleteAndAwait(gctx, c, job.Namespace, job.Name)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	job, err := deployjob.Build(gordo, cfg, revision)
	if err != nil {
		return nil, fmt.Errorf("building deploy job: %w", err)
	}
	if err := c.Create(ctx, job); err != nil {
		return nil, gordoerrors.NewKubeAPIError("create deploy job", err)
	}
	return job, nil
}

func deleteAndAwait(ctx context.Context, c client.Client, namespace, name string) error {
	key := types.NamespacedName{Namespace: namespace, Name: name}
	var job batchv1.Job
	if err := c.Delete(ctx, &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
	}, client.PropagationPolicy(metav1.DeletePropagationBackground)); err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}
		return gordoerrors.NewKubeAPIError("delete deploy job", err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		err := c.Get(ctx, key, &job)
		if apierrors.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return gordoerrors.NewKubeAPIError("get deploy job", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
