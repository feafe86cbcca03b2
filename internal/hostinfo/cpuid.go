package hostinfo

// readIdentifier executes the CPUID instruction for the given leaf
// and returns the EAX, EBX, ECX, EDX register contents. It is a
// variable so tests can substitute fixed register values.
var readIdentifier = func(selector uint32) (a, b, c, d uint32) {
	return cpuid(selector, 0)
}

// readVendor decodes the 12-byte vendor identification from leaf 0.
// The string lives in EBX, EDX, ECX — in that order, not the natural
// register order — four little-endian bytes per register.
func readVendor(info *HostInfo) {
	_, b, c, d := readIdentifier(0x00000000)
	for i := 0; i < 4; i++ {
		info.VendorString[i] = byte(b >> (i * 8))
		info.VendorString[i+4] = byte(d >> (i * 8))
		info.VendorString[i+8] = byte(c >> (i * 8))
	}
}

// readExtensions reads the feature bitmaps from leaf 1. Each flag is
// one isolated bit of EDX or ECX.
func readExtensions(info *HostInfo) {
	_, _, c, d := readIdentifier(0x00000001)
	info.MMX = uint8((d >> 23) & 0x1)
	info.SSE = uint8((d >> 25) & 0x1)
	info.SSE2 = uint8((d >> 26) & 0x1)
	info.SSE3 = uint8((c >> 0) & 0x1)
	info.SSE41 = uint8((c >> 19) & 0x1)
	info.SSE42 = uint8((c >> 20) & 0x1)
	// Leaf 1 bit only; see the package comment for the OSXSAVE caveat.
	info.AVX = uint8((c >> 28) & 0x1)
}

// readBrand assembles the 48-byte brand string from extended leaves
// 0x80000002-0x80000004. Each leaf contributes 16 bytes in natural
// A,B,C,D register order at offsets 0, 16, 32.
func readBrand(info *HostInfo) {
	offset := 0
	for _, selector := range []uint32{0x80000002, 0x80000003, 0x80000004} {
		a, b, c, d := readIdentifier(selector)
		for j, reg := range [4]uint32{a, b, c, d} {
			for i := 0; i < 4; i++ {
				info.BrandString[offset+j*4+i] = byte(reg >> (i * 8))
			}
		}
		offset += 16
	}
}
