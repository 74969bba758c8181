package deployjob

const namePrefix = "gordo-dpl-"

// maxNameLength is the Kubernetes object name limit (63 octets, RFC 1123
// label length).
const maxNameLength = 63

// deployJobName builds a Job name that is always ≤ 63 characters and
// always begins with namePrefix, by keeping the full prefix and as much
// of suffix as fits, favoring the end of suffix. This matches
// original_source's deploy_job_name (src/deploy_job.rs), which keeps the
// tail of the suffix rather than its head.
func deployJobName(suffix string) string {
	budget := maxNameLength - len(namePrefix)
	if budget < 0 {
		budget = 0
	}
	runes := []rune(suffix)
	if len(runes) > budget {
		runes = runes[len(runes)-budget:]
	}
	return namePrefix + string(runes)
}
