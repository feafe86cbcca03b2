//go:build amd64

package hostinfo

// cpuid executes the CPUID instruction with the given EAX and ECX
// inputs and returns the EAX, EBX, ECX, EDX outputs.
// Defined in cpuid_amd64.s.
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)
