package version

import (
	"regexp"
	"strings"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstants(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"App", App},
		{"Language", Language},
		{"Runner", Runner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !semverRegex.MatchString(tt.version) {
				t.Errorf("%s version %q does not match semver format (x.y.z)", tt.name, tt.version)
			}
		})
	}
}

func TestComponentVersion(t *testing.T) {
	tests := []struct {
		name      string
		component string
		expected  string
	}{
		{"rcl", "rcl", Language},
		{"language", "language", Language},
		{"runner", "runner", Runner},
		{"remote", "remote", Runner},
		{"unknown component", "unknown", App},
		{"empty component", "", App},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ComponentVersion(tt.component); result != tt.expected {
				t.Errorf("ComponentVersion(%q) = %q, want %q", tt.component, result, tt.expected)
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()

	if info.App != App {
		t.Errorf("App = %q, want %q", info.App, App)
	}
	if !strings.Contains(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q, want go toolchain", info.GoVersion)
	}
	if !strings.Contains(info.String(), "cellbot "+App) {
		t.Errorf("String() = %q, want app version", info.String())
	}
}
