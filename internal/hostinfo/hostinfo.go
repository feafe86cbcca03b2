// Package hostinfo answers a single question: what machine is this
// process running on. One synchronous call fills a caller-owned
// HostInfo record with the CPU identification data (vendor string,
// brand string, instruction set extensions) decoded from the CPUID
// instruction, and the processor count, clock frequency and physical
// memory figures reported by the operating system.
//
// Supported platforms are Linux and Windows on x86-64. The CPUID step
// is treated as a hard platform requirement and has no failure path.
//
// Known limitation: AVX is reported from CPUID leaf 1 ECX bit 28
// alone. A fully correct check would also verify OSXSAVE and the
// XCR0 YMM state via XGETBV; a kernel that does not enable AVX state
// saving will still be reported as AVX-capable here.
package hostinfo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned when the output record is nil.
	ErrInvalidArgument = errors.New("hostinfo: nil output record")

	// ErrIO wraps failures of the OS-level topology and memory query.
	// Record contents must not be trusted unless GetInfo returned nil.
	ErrIO = errors.New("hostinfo: system query failed")
)

// HostInfo is a fixed-shape snapshot of host machine facts. The
// caller allocates it; GetInfo zeroes and repopulates every field on
// each call, so nothing survives between queries.
//
// VendorString and BrandString are raw ASCII buffers exactly as
// decoded from the CPUID registers. They are not null-terminated:
// VendorString always carries 12 meaningful bytes, BrandString is
// three concatenated 16-byte chunks and may end in blanks or NULs.
// Use Vendor and Brand for display.
type HostInfo struct {
	CpuCount     uint32 // logical processors visible to the OS
	CpuFrequency uint32 // MHz, best effort; 0 when unobtainable

	VendorString [12]byte
	BrandString  [48]byte

	MMX   uint8
	SSE   uint8
	SSE2  uint8
	SSE3  uint8
	SSE41 uint8
	SSE42 uint8
	AVX   uint8

	RamSize  uint32 // total physical memory, KB
	RamFree  uint32 // free physical memory, KB
	RamUsage uint32 // approximate percent of memory in use, 0-100
}

// GetInfo fills info with the current host facts. It returns
// ErrInvalidArgument for a nil record, an error wrapping ErrIO when
// the OS topology or memory query fails, and nil on success.
//
// The record is zeroed before anything else, including on failure
// paths: callers must not assume an unmodified record when an error
// comes back. Each call is independent; concurrent calls are safe as
// long as every caller supplies its own record.
func GetInfo(info *HostInfo) error {
	if info == nil {
		return ErrInvalidArgument
	}
	info.zero()

	readVendor(info)
	readExtensions(info)
	readBrand(info)

	if err := readTopology(info); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// zero resets every field to its initial state.
func (h *HostInfo) zero() {
	*h = HostInfo{}
}

// Vendor returns the vendor identification as display text, with any
// trailing NUL padding removed (e.g. "GenuineIntel").
func (h *HostInfo) Vendor() string {
	return strings.TrimRight(string(h.VendorString[:]), "\x00")
}

// Brand returns the brand string as display text, trimmed of the
// trailing blanks and NULs the 48-byte buffer carries.
func (h *HostInfo) Brand() string {
	return strings.TrimRight(string(h.BrandString[:]), "\x00 ")
}

// Extensions lists the detected instruction set extensions by name.
func (h *HostInfo) Extensions() []string {
	var set []string
	for _, e := range []struct {
		name string
		flag uint8
	}{
		{"MMX", h.MMX},
		{"SSE", h.SSE},
		{"SSE2", h.SSE2},
		{"SSE3", h.SSE3},
		{"SSE4.1", h.SSE41},
		{"SSE4.2", h.SSE42},
		{"AVX", h.AVX},
	} {
		if e.flag != 0 {
			set = append(set, e.name)
		}
	}
	return set
}

// FormatText formats the record as human-readable text.
func (h *HostInfo) FormatText() string {
	return fmt.Sprintf("Host Information:\n\nCPU:\n- Vendor: %s\n- Brand: %s\n- Logical cores: %d\n- Frequency: %d MHz\n- Extensions: %s\n\nMemory:\n- Total: %.2f MB\n- Free: %.2f MB\n- Usage: %d%%",
		h.Vendor(),
		h.Brand(),
		h.CpuCount,
		h.CpuFrequency,
		strings.Join(h.Extensions(), ", "),
		float64(h.RamSize)/1024,
		float64(h.RamFree)/1024,
		h.RamUsage)
}
