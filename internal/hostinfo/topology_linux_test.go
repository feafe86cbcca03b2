package hostinfo

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeCpuinfo writes a synthetic /proc/cpuinfo into a temp dir and
// returns its path.
func writeCpuinfo(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cpuinfo")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestReadCPUMHz(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    uint32
	}{
		{
			"typical",
			"processor\t: 0\nvendor_id\t: GenuineIntel\ncpu MHz\t\t: 3400.000\n",
			3400,
		},
		{
			"first matching line wins",
			"cpu MHz\t\t: 1200.051\nprocessor\t: 1\ncpu MHz\t\t: 3800.000\n",
			1200,
		},
		{
			"fractional part truncated",
			"cpu MHz\t\t: 2799.998\n",
			2799,
		},
		{
			"no matching line",
			"processor\t: 0\nmodel name\t: Some ARM Core\n",
			0,
		},
		{
			"empty file",
			"",
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCpuinfo(t, tt.content)
			got, err := readCPUMHz(path)
			if err != nil {
				t.Fatalf("readCPUMHz: %v", err)
			}
			if got != tt.want {
				t.Errorf("readCPUMHz = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadCPUMHzMissingFile(t *testing.T) {
	if _, err := readCPUMHz(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("readCPUMHz on a missing file returned nil error")
	}
}

func TestReadTopologyFromSyntheticCpuinfo(t *testing.T) {
	path := writeCpuinfo(t, "cpu MHz\t\t: 3000.000\n")

	var info HostInfo
	if err := readTopologyFrom(&info, path); err != nil {
		t.Fatalf("readTopologyFrom: %v", err)
	}

	if info.CpuFrequency != 3000 {
		t.Errorf("CpuFrequency = %d, want 3000", info.CpuFrequency)
	}
	if info.CpuCount == 0 {
		t.Error("CpuCount = 0, want > 0")
	}
	if info.RamSize == 0 {
		t.Error("RamSize = 0, want > 0")
	}
	if info.RamFree > info.RamSize {
		t.Errorf("RamFree %d > RamSize %d", info.RamFree, info.RamSize)
	}
	if info.RamUsage > 100 {
		t.Errorf("RamUsage = %d, want <= 100", info.RamUsage)
	}
}

func TestReadTopologyFromMissingCpuinfo(t *testing.T) {
	var info HostInfo
	err := readTopologyFrom(&info, filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("readTopologyFrom with a missing cpuinfo returned nil error")
	}
}

func TestGetInfoRealHost(t *testing.T) {
	var info HostInfo
	if err := GetInfo(&info); err != nil {
		t.Fatalf("GetInfo: %v", err)
	}

	if info.CpuCount == 0 {
		t.Error("CpuCount = 0, want > 0")
	}
	if info.RamSize == 0 {
		t.Error("RamSize = 0, want > 0")
	}
	if info.RamUsage > 100 {
		t.Errorf("RamUsage = %d, want <= 100", info.RamUsage)
	}
	if runtime.GOARCH == "amd64" && info.Vendor() == "" {
		t.Error("Vendor() empty on amd64")
	}
}

func TestGetInfoStaticFieldsIdempotent(t *testing.T) {
	var first, second HostInfo
	if err := GetInfo(&first); err != nil {
		t.Fatalf("first GetInfo: %v", err)
	}
	if err := GetInfo(&second); err != nil {
		t.Fatalf("second GetInfo: %v", err)
	}

	// Frequency and memory figures track live OS state; identity and
	// capability fields must not change between calls.
	if first.CpuCount != second.CpuCount {
		t.Errorf("CpuCount changed: %d then %d", first.CpuCount, second.CpuCount)
	}
	if first.VendorString != second.VendorString {
		t.Errorf("VendorString changed: %q then %q", first.VendorString, second.VendorString)
	}
	if first.BrandString != second.BrandString {
		t.Errorf("BrandString changed: %q then %q", first.BrandString, second.BrandString)
	}
	firstFlags := [7]uint8{first.MMX, first.SSE, first.SSE2, first.SSE3, first.SSE41, first.SSE42, first.AVX}
	secondFlags := [7]uint8{second.MMX, second.SSE, second.SSE2, second.SSE3, second.SSE41, second.SSE42, second.AVX}
	if firstFlags != secondFlags {
		t.Errorf("feature flags changed: %v then %v", firstFlags, secondFlags)
	}
}
