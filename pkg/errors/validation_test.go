package errors

import "testing"

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "cat/one", false},
		{"hyphenated", "dev-libs/libfoo-bar", false},
		{"plus", "sys-libs/g++", false},
		{"scm suffix", "app-misc/tool-live", false},
		{"empty", "", true},
		{"no category", "one", true},
		{"two slashes", "cat/one/two", true},
		{"empty package", "cat/", true},
		{"leading hyphen", "cat/-one", true},
		{"ends in version", "cat/one-1", true},
		{"ends in dotted version", "cat/one-1.2", true},
		{"control character", "cat/o\x01ne", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("ValidatePackageName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}

func TestValidateSetName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"world", false},
		{"system", false},
		{"security-2024", false},
		{"everything*", false},
		{"", true},
		{"bad name", true},
		{"-leading", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidateSetName(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateSetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRepositoryName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"gentoo", false},
		{"installed", false},
		{"my_overlay-2", false},
		{"", true},
		{"bad/name", true},
		{"has space", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidateRepositoryName(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepositoryName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"repo.toml", false},
		{"/etc/deplist/repo.toml", false},
		{"", true},
		{"../escape.toml", true},
		{"bad\x00path", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidatePath(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"redis://localhost:6379/0", false},
		{"rediss://cache.internal:6380", false},
		{"", true},
		{"http://localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
