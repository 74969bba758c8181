// Command gordo-controller runs the reconciler and read-only HTTP query
// surface described in SPEC_FULL.md.
package main

import (
	"fmt"
	"os"

	wfv1 "github.com/argoproj/argo-workflows/v3/pkg/apis/workflow/v1alpha1"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"

	equinorv1 "github.com/equinor/gordo-controller/pkg/apis/equinor/v1"
	"github.com/equinor/gordo-controller/pkg/config"
	"github.com/equinor/gordo-controller/pkg/controller"
	"github.com/equinor/gordo-controller/pkg/httpapi"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(corev1.AddToScheme(scheme))
	utilruntime.Must(batchv1.AddToScheme(scheme))
	utilruntime.Must(equinorv1.AddToScheme(scheme))
	utilruntime.Must(wfv1.AddToScheme(scheme))
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	zapLog, err := newZapLogger()
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	defer zapLog.Sync() //nolint:errcheck
	log := zapr.NewLogger(zapLog)
	ctrl.SetLogger(log)

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("loading kubeconfig: %w", err)
	}

	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme: scheme,
	})
	if err != nil {
		return fmt.Errorf("constructing manager: %w", err)
	}

	reconciler := &controller.GordoReconciler{
		Client: mgr.GetClient(),
		Config: cfg,
	}
	if err := reconciler.SetupWithManager(mgr); err != nil {
		return fmt.Errorf("wiring gordo reconciler: %w", err)
	}

	server := httpapi.New(
		fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		mgr.GetAPIReader(),
		log.WithName("httpapi"),
	)
	if err := mgr.Add(server); err != nil {
		return fmt.Errorf("wiring http server: %w", err)
	}

	log.Info("starting gordo-controller")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		return fmt.Errorf("running manager: %w", err)
	}
	return nil
}

func newZapLogger() (*zap.Logger, error) {
	if os.Getenv("GORDO_DEV_LOGGING") == "true" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
