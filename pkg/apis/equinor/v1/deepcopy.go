package v1

import (
	"encoding/json"

	"k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies every field of in into out.
func (in *GordoSpec) DeepCopyInto(out *GordoSpec) {
	*out = *in
	if in.DeployEnvironment != nil {
		out.DeployEnvironment = make(map[string]string, len(in.DeployEnvironment))
		for k, v := range in.DeployEnvironment {
			out.DeployEnvironment[k] = v
		}
	}
	if in.DeployRepository != nil {
		v := *in.DeployRepository
		out.DeployRepository = &v
	}
	if in.DockerRegistry != nil {
		v := *in.DockerRegistry
		out.DockerRegistry = &v
	}
	in.Config.DeepCopyInto(&out.Config)
}

// DeepCopyInto copies every field of in into out.
func (in *GordoConfig) DeepCopyInto(out *GordoConfig) {
	if in.Models == nil {
		out.Models = nil
		return
	}
	out.Models = make([]json.RawMessage, len(in.Models))
	for i, m := range in.Models {
		cp := make(json.RawMessage, len(m))
		copy(cp, m)
		out.Models[i] = cp
	}
}

// DeepCopyInto copies every field of in into out.
func (in *GordoStatus) DeepCopyInto(out *GordoStatus) {
	*out = *in
	if in.SubmissionStatus.Generation != nil {
		v := *in.SubmissionStatus.Generation
		out.SubmissionStatus.Generation = &v
	}
}

// DeepCopy returns a deep copy of in, or nil.
func (in *GordoStatus) DeepCopy() *GordoStatus {
	if in == nil {
		return nil
	}
	out := new(GordoStatus)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies every field of in into out.
func (in *Gordo) DeepCopyInto(out *Gordo) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	out.Status = in.Status.DeepCopy()
}

// DeepCopy returns a deep copy of in.
func (in *Gordo) DeepCopy() *Gordo {
	if in == nil {
		return nil
	}
	out := new(Gordo)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *Gordo) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies every field of in into out.
func (in *GordoList) DeepCopyInto(out *GordoList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]Gordo, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy returns a deep copy of in.
func (in *GordoList) DeepCopy() *GordoList {
	if in == nil {
		return nil
	}
	out := new(GordoList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *GordoList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies every field of in into out.
func (in *ModelSpec) DeepCopyInto(out *ModelSpec) {
	*out = *in
	if in.Config != nil {
		out.Config = make(json.RawMessage, len(in.Config))
		copy(out.Config, in.Config)
	}
}

// DeepCopyInto copies every field of in into out.
func (in *ModelStatus) DeepCopyInto(out *ModelStatus) {
	*out = *in
	if in.Code != nil {
		v := *in.Code
		out.Code = &v
	}
}

// DeepCopy returns a deep copy of in, or nil.
func (in *ModelStatus) DeepCopy() *ModelStatus {
	if in == nil {
		return nil
	}
	out := new(ModelStatus)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies every field of in into out.
func (in *Model) DeepCopyInto(out *Model) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	out.Status = in.Status.DeepCopy()
}

// DeepCopy returns a deep copy of in.
func (in *Model) DeepCopy() *Model {
	if in == nil {
		return nil
	}
	out := new(Model)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *Model) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies every field of in into out.
func (in *ModelList) DeepCopyInto(out *ModelList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]Model, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy returns a deep copy of in.
func (in *ModelList) DeepCopy() *ModelList {
	if in == nil {
		return nil
	}
	out := new(ModelList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *ModelList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
