// SPDX-License-Identifier: MPL-2.0

package dialect

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// osReleasePath is the standard identification file on systemd hosts.
const osReleasePath = "/etc/os-release"

// aptFamilies and dnfFamilies map os-release ID / ID_LIKE tokens to a
// package-manager family.
var (
	aptFamilies = map[string]bool{"debian": true, "ubuntu": true, "linuxmint": true, "pop": true, "raspbian": true}
	dnfFamilies = map[string]bool{"fedora": true, "rhel": true, "centos": true, "rocky": true, "almalinux": true}
)

// Detect probes /etc/os-release and PATH and returns the dialect for this
// host. It returns ErrUnsupportedHost when neither family is recognized.
// Detection is read-only and runs before any mutating operation.
func Detect() (Dialect, error) {
	data, err := os.ReadFile(osReleasePath)
	if err != nil {
		// No os-release: fall back to PATH probing alone.
		data = nil
	}
	return detect(string(data), exec.LookPath)
}

// detect is the testable core of Detect: it takes os-release contents and a
// PATH lookup function instead of touching the host.
func detect(osRelease string, lookPath func(string) (string, error)) (Dialect, error) {
	for _, id := range osReleaseIDs(osRelease) {
		switch {
		case aptFamilies[id]:
			if _, err := lookPath(Apt{}.Tool()); err != nil {
				return nil, fmt.Errorf("host identifies as %q but %s is not on PATH: %w", id, Apt{}.Tool(), ErrToolMissing)
			}
			return Apt{}, nil
		case dnfFamilies[id]:
			if _, err := lookPath(Dnf{}.Tool()); err != nil {
				return nil, fmt.Errorf("host identifies as %q but %s is not on PATH: %w", id, Dnf{}.Tool(), ErrToolMissing)
			}
			return Dnf{}, nil
		}
	}

	// Unknown or missing os-release: trust PATH, preferring apt since dnf
	// is never present on Debian-family hosts while apt shims exist on some
	// RPM-family ones.
	if _, err := lookPath(Apt{}.Tool()); err == nil {
		return Apt{}, nil
	}
	if _, err := lookPath(Dnf{}.Tool()); err == nil {
		return Dnf{}, nil
	}

	return nil, ErrUnsupportedHost
}

// osReleaseIDs extracts the ID value followed by all ID_LIKE tokens, in
// precedence order, lowercased and unquoted.
func osReleaseIDs(content string) []string {
	var id string
	var like []string

	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			id = strings.ToLower(value)
		case "ID_LIKE":
			for _, tok := range strings.Fields(strings.ToLower(value)) {
				like = append(like, tok)
			}
		}
	}

	if id == "" {
		return like
	}
	return append([]string{id}, like...)
}
