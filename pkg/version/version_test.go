package version

import (
	"slices"
	"testing"

	"github.com/matzehuels/deplist/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1", false},
		{"1.2.3", false},
		{"1.2b", false},
		{"1.2_alpha3", false},
		{"1.2_rc1_p2", false},
		{"1.2-r1", false},
		{"1.2-scm", false},
		{"scm", false},
		{"", true},
		{"a", true},
		{"1..2", true},
		{"1.2_gamma", true},
		{"1.2-foo", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidVersion) {
				t.Errorf("Parse(%q) code = %v, want %v", tt.input, errors.GetCode(err), errors.ErrCodeInvalidVersion)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "1", 0},
		{"1", "2", -1},
		{"1.10", "1.9", 1},
		{"1.2", "1.2.0", -1},
		{"1.01", "1.1", -1},
		{"1.010", "1.01", 0},
		{"1.2a", "1.2b", -1},
		{"1.2_alpha1", "1.2_beta1", -1},
		{"1.2_rc1", "1.2", -1},
		{"1.2", "1.2_p1", -1},
		{"1.2_p1", "1.2_p2", -1},
		{"1.2-r1", "1.2", 1},
		{"1.2-r01", "1.2-r1", 0},
		{"1.2-scm", "1.2_p9", 1},
		{"1.2-scm", "1.3", -1},
		{"scm", "99999", 1},
		{"scm", "scm", 0},
		{"123456789012345678901234567890", "123456789012345678901234567891", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := MustParse(tt.a).Compare(MustParse(tt.b))
			if got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if back := MustParse(tt.b).Compare(MustParse(tt.a)); back != -tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.b, tt.a, back, -tt.want)
			}
		})
	}
}

func TestSortOrder(t *testing.T) {
	input := []string{"1.2-r1", "1.0_alpha", "scm", "1.2", "1.0", "1.2_rc2", "1.1"}
	vs := make([]Version, len(input))
	for i, s := range input {
		vs[i] = MustParse(s)
	}
	slices.SortFunc(vs, Version.Compare)

	var got []string
	for _, v := range vs {
		got = append(got, v.String())
	}
	want := []string{"1.0_alpha", "1.0", "1.1", "1.2_rc2", "1.2", "1.2-r1", "scm"}
	if !slices.Equal(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestWithoutRevision(t *testing.T) {
	v := MustParse("1.2-r3").WithoutRevision()
	if v.String() != "1.2" {
		t.Errorf("WithoutRevision() = %q, want %q", v.String(), "1.2")
	}
	if v.Revision() != "0" {
		t.Errorf("Revision() = %q, want %q", v.Revision(), "0")
	}
}

func TestIsSCM(t *testing.T) {
	for s, want := range map[string]bool{"scm": true, "1.0-scm": true, "1.0": false, "9999": false} {
		if got := MustParse(s).IsSCM(); got != want {
			t.Errorf("IsSCM(%s) = %v, want %v", s, got, want)
		}
	}
}
