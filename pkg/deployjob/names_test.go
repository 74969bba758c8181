package deployjob

import "testing"

func TestDeployJobName(t *testing.T) {
	cases := map[string]struct {
		suffix string
		want   string
	}{
		"short suffix kept whole": {
			suffix: "some-suffix",
			want:   "gordo-dpl-some-suffix",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := deployJobName(tc.suffix); got != tc.want {
				t.Errorf("deployJobName(%q) = %q, want %q", tc.suffix, got, tc.want)
			}
		})
	}
}

func TestDeployJobNameTruncatesFavoringTail(t *testing.T) {
	suffix := ""
	for i := 0; i < 100; i++ {
		suffix += "a"
	}
	suffix += "required-suffix"

	got := deployJobName(suffix)
	if len(got) != 63 {
		t.Fatalf("len(name) = %d, want 63", len(got))
	}
	want := "gordo-dpl-" + suffix[len(suffix)-(63-len(namePrefix)):]
	if got != want {
		t.Errorf("deployJobName(...) = %q, want %q", got, want)
	}
	const tail = "required-suffix"
	if got[len(got)-len(tail):] != tail {
		t.Errorf("deployJobName(...) = %q, does not end with %q", got, tail)
	}
}

func TestDeployJobNameAlwaysWithinBudget(t *testing.T) {
	suffixes := []string{"", "x", "gordo-project-1", "a-very-very-very-long-gordo-project-name-42"}
	for _, s := range suffixes {
		name := deployJobName(s)
		if len(name) > 63 {
			t.Errorf("deployJobName(%q) = %q, length %d > 63", s, name, len(name))
		}
		if len(name) < len(namePrefix) || name[:len(namePrefix)] != namePrefix {
			t.Errorf("deployJobName(%q) = %q, does not start with %q", s, name, namePrefix)
		}
	}
}
