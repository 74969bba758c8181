// Package v1 contains the Gordo and Model custom resource definitions in
// the equinor.com/v1 group/version.
package v1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

// GroupVersion is the API group and version used for every type in this package.
var GroupVersion = schema.GroupVersion{Group: "equinor.com", Version: "v1"}

// SchemeBuilder is used to add go types to the GroupVersionKind scheme.
var SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

// AddToScheme adds the types in this group/version to the given scheme.
var AddToScheme = SchemeBuilder.AddToScheme

func init() {
	SchemeBuilder.Register(&Gordo{}, &GordoList{}, &Model{}, &ModelList{})
}
