//go:build !amd64

package hostinfo

// cpuid on architectures without the instruction. The x86
// identification step is a hard platform requirement; elsewhere the
// decoded fields simply stay zero.
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32) {
	return 0, 0, 0, 0
}
