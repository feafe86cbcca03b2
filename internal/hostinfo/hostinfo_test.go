package hostinfo

import (
	"errors"
	"strings"
	"testing"
)

func TestGetInfoNilRecord(t *testing.T) {
	// The nil check must run before any other work, so even a mock
	// reader that would blow up is never reached.
	withMockIdentifier(t, nil)

	if err := GetInfo(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("GetInfo(nil) = %v, want ErrInvalidArgument", err)
	}
}

func TestZeroErasesPriorContents(t *testing.T) {
	info := HostInfo{
		CpuCount:     8,
		CpuFrequency: 3400,
		MMX:          1,
		SSE42:        1,
		RamSize:      16 << 20,
		RamFree:      4 << 20,
		RamUsage:     75,
	}
	for i := range info.VendorString {
		info.VendorString[i] = 0xFF
	}
	for i := range info.BrandString {
		info.BrandString[i] = 0xFF
	}

	info.zero()

	if info != (HostInfo{}) {
		t.Errorf("record not fully zeroed: %+v", info)
	}
}

func TestFormatTextContainsDecodedFields(t *testing.T) {
	withMockIdentifier(t, map[uint32][4]uint32{
		0x00000000: {0x16, 0x756e6547, 0x6c65746e, 0x49656e69},
	})

	var info HostInfo
	readVendor(&info)
	info.CpuCount = 4
	info.CpuFrequency = 2800
	info.SSE2 = 1
	info.RamUsage = 42

	text := info.FormatText()
	for _, fragment := range []string{"GenuineIntel", "2800 MHz", "SSE2", "42%"} {
		if !strings.Contains(text, fragment) {
			t.Errorf("FormatText() missing %q:\n%s", fragment, text)
		}
	}
}
