package hostinfo

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
)

const cpuinfoPath = "/proc/cpuinfo"

// readTopology fills the OS-reported fields on Linux: processor
// count, nominal frequency from /proc/cpuinfo, and physical memory
// from the kernel via gopsutil.
func readTopology(info *HostInfo) error {
	return readTopologyFrom(info, cpuinfoPath)
}

// readTopologyFrom is the testable implementation of readTopology.
// It takes the cpuinfo path so tests can point at synthetic files.
func readTopologyFrom(info *HostInfo, cpuinfo string) error {
	mhz, err := readCPUMHz(cpuinfo)
	if err != nil {
		return err
	}

	info.CpuCount = uint32(runtime.NumCPU())
	info.CpuFrequency = mhz

	vm, err := mem.VirtualMemory()
	if err != nil {
		return err
	}
	info.RamSize = uint32(vm.Total / 1024)
	info.RamFree = uint32(vm.Free / 1024)
	if info.RamSize > 0 {
		info.RamUsage = uint32(100 - (float64(info.RamFree)/float64(info.RamSize))*100)
	}
	return nil
}

// readCPUMHz parses the first "cpu MHz" line of /proc/cpuinfo and
// returns its value truncated to whole MHz. CPUID leaf 0x16 is not
// implemented everywhere, so the pseudo-file is the portable source.
// A file without a matching line yields 0, not an error; a file that
// cannot be opened is an error.
func readCPUMHz(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu MHz") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		// Values look like "3400.000"; whole MHz is enough.
		value := strings.TrimSpace(parts[1])
		if dot := strings.IndexByte(value, '.'); dot >= 0 {
			value = value[:dot]
		}
		mhz, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return 0, nil
		}
		return uint32(mhz), nil
	}
	return 0, scanner.Err()
}
