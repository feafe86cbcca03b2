package hostinfo

import (
	"testing"
)

// withMockIdentifier replaces the CPUID reader with fixed register
// values per selector for the duration of the test. Unlisted
// selectors read as all-zero registers.
func withMockIdentifier(t *testing.T, registers map[uint32][4]uint32) {
	t.Helper()
	original := readIdentifier
	readIdentifier = func(selector uint32) (a, b, c, d uint32) {
		r := registers[selector]
		return r[0], r[1], r[2], r[3]
	}
	t.Cleanup(func() { readIdentifier = original })
}

// packChunk encodes 16 ASCII bytes as four little-endian registers
// in A,B,C,D order, the layout of the brand string leaves.
func packChunk(t *testing.T, chunk string) [4]uint32 {
	t.Helper()
	if len(chunk) != 16 {
		t.Fatalf("chunk %q is %d bytes, want 16", chunk, len(chunk))
	}
	var registers [4]uint32
	for i := 0; i < 16; i++ {
		registers[i/4] |= uint32(chunk[i]) << ((i % 4) * 8)
	}
	return registers
}

func TestReadVendorRegisterOrder(t *testing.T) {
	// "GenuineIntel" is spread over EBX "Genu", EDX "ineI", ECX
	// "ntel" — the decode must read B, D, C, not the natural order.
	withMockIdentifier(t, map[uint32][4]uint32{
		0x00000000: {0x16, 0x756e6547, 0x6c65746e, 0x49656e69},
	})

	var info HostInfo
	readVendor(&info)

	if got := string(info.VendorString[:]); got != "GenuineIntel" {
		t.Errorf("VendorString = %q, want GenuineIntel", got)
	}
	if info.Vendor() != "GenuineIntel" {
		t.Errorf("Vendor() = %q, want GenuineIntel", info.Vendor())
	}
}

func TestReadBrandConcatenation(t *testing.T) {
	withMockIdentifier(t, map[uint32][4]uint32{
		0x80000002: packChunk(t, "Intel(R) Core(TM"),
		0x80000003: packChunk(t, ") i7-9700K CPU @"),
		0x80000004: packChunk(t, " 3.00GHz\x00       "),
	})

	var info HostInfo
	readBrand(&info)

	want := "Intel(R) Core(TM) i7-9700K CPU @ 3.00GHz\x00       "
	if got := string(info.BrandString[:]); got != want {
		t.Errorf("BrandString = %q, want %q", got, want)
	}
	if info.Brand() != "Intel(R) Core(TM) i7-9700K CPU @ 3.00GHz" {
		t.Errorf("Brand() = %q", info.Brand())
	}
}

func TestReadExtensionsBitPositions(t *testing.T) {
	tests := []struct {
		name string
		ecx  uint32
		edx  uint32
		want HostInfo
	}{
		{"none", 0, 0, HostInfo{}},
		{"mmx", 0, 1 << 23, HostInfo{MMX: 1}},
		{"sse", 0, 1 << 25, HostInfo{SSE: 1}},
		{"sse2", 0, 1 << 26, HostInfo{SSE2: 1}},
		{"sse3", 1 << 0, 0, HostInfo{SSE3: 1}},
		{"sse41", 1 << 19, 0, HostInfo{SSE41: 1}},
		{"sse42", 1 << 20, 0, HostInfo{SSE42: 1}},
		{"avx", 1 << 28, 0, HostInfo{AVX: 1}},
		{
			"all",
			1<<0 | 1<<19 | 1<<20 | 1<<28,
			1<<23 | 1<<25 | 1<<26,
			HostInfo{MMX: 1, SSE: 1, SSE2: 1, SSE3: 1, SSE41: 1, SSE42: 1, AVX: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withMockIdentifier(t, map[uint32][4]uint32{
				0x00000001: {0, 0, tt.ecx, tt.edx},
			})

			var info HostInfo
			readExtensions(&info)

			if info != tt.want {
				t.Errorf("flags = %+v, want %+v", info, tt.want)
			}
		})
	}
}

func TestExtensionsListing(t *testing.T) {
	info := HostInfo{SSE2: 1, AVX: 1}
	got := info.Extensions()
	if len(got) != 2 || got[0] != "SSE2" || got[1] != "AVX" {
		t.Errorf("Extensions() = %v, want [SSE2 AVX]", got)
	}
}
