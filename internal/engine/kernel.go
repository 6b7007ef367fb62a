// SPDX-License-Identifier: MPL-2.0

package engine

import "strings"

// kernelPending reports whether an installed kernel is newer than the
// running one, meaning the host boots into an old kernel until restarted.
// Unknown inputs report false: this is a best-effort hint, not a contract.
func kernelPending(running string, installed []string) bool {
	if running == "" || len(installed) == 0 {
		return false
	}
	for _, k := range installed {
		if kernelLess(running, k) {
			return true
		}
	}
	return false
}

// kernelLess compares two kernel release strings segment by segment,
// numerically where both segments are numeric (so 6.1.10 > 6.1.9).
func kernelLess(a, b string) bool {
	as := splitRelease(a)
	bs := splitRelease(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aNum := atoi(as[i])
		bn, bNum := atoi(bs[i])
		switch {
		case aNum && bNum:
			if an != bn {
				return an < bn
			}
		default:
			if as[i] != bs[i] {
				return as[i] < bs[i]
			}
		}
	}
	return len(as) < len(bs)
}

// splitRelease cuts a release string like "6.1.0-18-amd64" on . and -.
func splitRelease(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '-' })
}

// atoi parses a decimal segment, reporting whether it was fully numeric.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
