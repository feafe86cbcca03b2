//go:build !linux && !windows

package hostinfo

import (
	"errors"
	"runtime"
)

// readTopology on unsupported platforms. Only Linux and Windows are
// in scope; everywhere else the query fails outright.
func readTopology(info *HostInfo) error {
	return errors.New("unsupported platform " + runtime.GOOS)
}
