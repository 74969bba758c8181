package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/equinor/gordo-controller/pkg/gordoerrors"
)

var (
	kubeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gordo_controller",
			Name:      "kube_errors",
			Help:      "Total number of Kubernetes API errors encountered, by call site and error category.",
		},
		[]string{"action", "kube_name"},
	)
	warningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gordo_controller",
			Name:      "warnings",
			Help:      "Total number of recoverable warning conditions, by name.",
		},
		[]string{"name"},
	)
	reconcileCountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gordo_controller",
			Name:      "reconcile_count",
			Help:      "Total number of reconcile passes run, by Gordo name.",
		},
		[]string{"gordo_name"},
	)
	reconcileGordoSucceded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gordo_controller",
			Name:      "reconcile_gordo_succeded",
			Help:      "Total number of Gordo reconciles that completed without error.",
		},
	)
	reconcileGordoError = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gordo_controller",
			Name:      "reconcile_gordo_error",
			Help:      "Total number of Gordo reconciles that returned an error.",
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		kubeErrorsTotal,
		warningsTotal,
		reconcileCountTotal,
		reconcileGordoSucceded,
		reconcileGordoError,
	)
}

// recordKubeError wraps err in a *gordoerrors.KubeAPIError, increments
// kubeErrorsTotal by action and category, and returns the wrapped error so
// call sites can keep propagating it.
func recordKubeError(action string, err error) error {
	if err == nil {
		return nil
	}
	kerr := gordoerrors.NewKubeAPIError(action, err)
	kubeErrorsTotal.WithLabelValues(action, kerr.Category).Inc()
	return kerr
}

func recordWarning(name string) {
	warningsTotal.WithLabelValues(name).Inc()
}
