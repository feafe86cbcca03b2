package hostinfo

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

var (
	modkernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procGlobalMemoryStatusEx = modkernel32.NewProc("GlobalMemoryStatusEx")
)

// memoryStatusEx mirrors MEMORYSTATUSEX from the Windows API.
type memoryStatusEx struct {
	Length               uint32
	MemoryLoad           uint32
	TotalPhys            uint64
	AvailPhys            uint64
	TotalPageFile        uint64
	AvailPageFile        uint64
	TotalVirtual         uint64
	AvailVirtual         uint64
	AvailExtendedVirtual uint64
}

// readTopology fills the OS-reported fields on Windows: processor
// count, the first processor's nominal clock from the registry, and
// physical memory from GlobalMemoryStatusEx. A missing registry key
// is surfaced as an error like any other I/O failure, so both
// platforms behave the same on a missing frequency source.
func readTopology(info *HostInfo) error {
	info.CpuCount = uint32(runtime.NumCPU())

	key, err := registry.OpenKey(registry.LOCAL_MACHINE,
		`HARDWARE\DESCRIPTION\System\CentralProcessor\0`, registry.QUERY_VALUE)
	if err != nil {
		return fmt.Errorf("open processor registry key: %v", err)
	}
	defer key.Close()

	mhz, _, err := key.GetIntegerValue("~MHz")
	if err != nil {
		return fmt.Errorf("read ~MHz value: %v", err)
	}
	info.CpuFrequency = uint32(mhz)

	var status memoryStatusEx
	status.Length = uint32(unsafe.Sizeof(status))
	ret, _, callErr := procGlobalMemoryStatusEx.Call(uintptr(unsafe.Pointer(&status)))
	if ret == 0 {
		return fmt.Errorf("GlobalMemoryStatusEx: %v", callErr)
	}
	info.RamSize = uint32(status.TotalPhys / 1024)
	info.RamFree = uint32(status.AvailPhys / 1024)
	// The API reports the load percentage directly.
	info.RamUsage = status.MemoryLoad
	return nil
}
