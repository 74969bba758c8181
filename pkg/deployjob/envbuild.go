package deployjob

import corev1 "k8s.io/api/core/v1"

// upsertEnvVar inserts v, or overwrites the existing entry with the same
// name, preserving the position of the first occurrence. This mirrors the
// upsert-by-key helper in the teacher's pkg/apply/apply.go, and is what
// implements the "later keys override earlier" ordering rule of
// spec.md §4.2 without manual index bookkeeping.
func upsertEnvVar(vars *[]corev1.EnvVar, v corev1.EnvVar) {
	for i := range *vars {
		if (*vars)[i].Name == v.Name {
			(*vars)[i] = v
			return
		}
	}
	*vars = append(*vars, v)
}

func upsertEnvVars(vars *[]corev1.EnvVar, vs ...corev1.EnvVar) {
	for _, v := range vs {
		upsertEnvVar(vars, v)
	}
}
