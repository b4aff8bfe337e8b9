package version

import "testing"

func TestRequirementMatches(t *testing.T) {
	tests := []struct {
		req     string
		version string
		want    bool
	}{
		{"=1.2", "1.2", true},
		{"=1.2", "1.2-r1", false},
		{"<1.2", "1.1", true},
		{"<1.2", "1.2", false},
		{"<=1.2", "1.2", true},
		{">1.2", "1.2-r1", true},
		{">=1.2", "1.2_rc1", false},
		{"~1.2", "1.2-r5", true},
		{"~1.2-r1", "1.2", true},
		{"~1.2", "1.3", false},
		{"=1.2*", "1.2.3", true},
		{"=1.2*", "1.2", true},
		{"=1.2*", "1.20", false},
		{"=1*", "1.5", true},
		{"~>1.2", "1.9", true},
		{"~>1.2", "2.0", false},
		{"~>1.2", "1.1", false},
		{"~>1.2.3", "1.2.9", true},
		{"~>1.2.3", "1.3.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.req+"_"+tt.version, func(t *testing.T) {
			r, err := ParseRequirement(tt.req)
			if err != nil {
				t.Fatalf("ParseRequirement(%q) error: %v", tt.req, err)
			}
			if got := r.Matches(MustParse(tt.version)); got != tt.want {
				t.Errorf("%s.Matches(%s) = %v, want %v", tt.req, tt.version, got, tt.want)
			}
		})
	}
}

func TestRequirementString(t *testing.T) {
	for _, s := range []string{"=1.2", "<1", ">=2.0_rc1", "~1.2", "=1.2*", "~>1.4"} {
		r, err := ParseRequirement(s)
		if err != nil {
			t.Fatalf("ParseRequirement(%q) error: %v", s, err)
		}
		if r.String() != s {
			t.Errorf("String() = %q, want %q", r.String(), s)
		}
	}
}

func TestParseRequirementErrors(t *testing.T) {
	for _, s := range []string{"1.2", "=", ">=x"} {
		if _, err := ParseRequirement(s); err == nil {
			t.Errorf("ParseRequirement(%q) expected error", s)
		}
	}
}
