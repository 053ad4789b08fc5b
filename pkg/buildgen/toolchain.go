package buildgen

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const gccInstallURL = "https://developer.arm.com/tools-and-software/open-source-software/developer-tools/gnu-toolchain/gnu-rm/downloads"

// CheckGCC verifies that the cross compiler is installed and at least
// minVersion, e.g. "10.2.0".
func CheckGCC(minVersion string) error {
	if _, err := exec.LookPath(GCC); err != nil {
		return fmt.Errorf("requires %s, install from %s", GCC, gccInstallURL)
	}

	out, err := exec.Command(GCC, "-dumpversion").Output()
	if err != nil {
		return fmt.Errorf("run %s -dumpversion: %w", GCC, err)
	}

	have := strings.TrimSpace(string(out))
	older, err := versionLess(have, minVersion)
	if err != nil {
		return err
	}
	if older {
		return fmt.Errorf("requires %s >= %s, have %s, install from %s", GCC, minVersion, have, gccInstallURL)
	}
	return nil
}

// versionLess reports whether dotted version a sorts before b.
func versionLess(a, b string) (bool, error) {
	as, err := versionParts(a)
	if err != nil {
		return false, err
	}
	bs, err := versionParts(b)
	if err != nil {
		return false, err
	}

	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av != bv {
			return av < bv, nil
		}
	}
	return false, nil
}

func versionParts(v string) ([]int, error) {
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad version %q: %w", v, err)
		}
		parts[i] = n
	}
	return parts, nil
}
