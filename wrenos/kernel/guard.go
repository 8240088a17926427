package kernel

import (
	"wren/wrenos/mem"
	"wren/wrenos/sys"
)

// The user-memory guard. Two independent checks are both required for
// every byte: the range check rejects addresses that are syntactically in
// kernel space even if a page happens to be mapped there, and the
// page-table read rejects addresses that are in user space but unmapped.

// CheckRange reports whether a lies below the kernel/user split. Pure
// address predicate; it never dereferences.
func CheckRange(a mem.Addr) bool { return a < mem.UserTop }

// ReadUserByte reads one byte of user memory. ok is false if a is at or
// above the kernel/user split or the page is unmapped; the failed access
// is intercepted by the page table, never crashing the kernel.
func ReadUserByte(as *mem.AddressSpace, a mem.Addr) (byte, bool) {
	if !CheckRange(a) {
		return 0, false
	}
	v, err := as.ReadByte(a)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CheckBuffer reports whether every byte of [start, start+n) is readable
// user memory. It fails on the first bad byte, wherever it sits in the
// range.
func CheckBuffer(as *mem.AddressSpace, start mem.Addr, n int) bool {
	for i := 0; i < n; i++ {
		if _, ok := ReadUserByte(as, start+mem.Addr(i)); !ok {
			return false
		}
	}
	return true
}

// ReadUserBytes copies len(dst) bytes from user address src into dst, one
// byte at a time through the guard. On the first fault it aborts with
// ok=false; dst is then partially written and must not be trusted.
func ReadUserBytes(as *mem.AddressSpace, src mem.Addr, dst []byte) (int, bool) {
	for i := range dst {
		v, ok := ReadUserByte(as, src+mem.Addr(i))
		if !ok {
			return 0, false
		}
		dst[i] = v
	}
	return len(dst), true
}

// ReadUserWord fetches one 4-byte argument word from user memory.
func ReadUserWord(as *mem.AddressSpace, a mem.Addr) (uint32, bool) {
	var b [sys.WordBytes]byte
	if _, ok := ReadUserBytes(as, a, b[:]); !ok {
		return 0, false
	}
	return sys.Word(b[:]), true
}

// maxCmdline bounds the command line exec will read from user space.
const maxCmdline = 4096

// readUserString reads a NUL-terminated string of at most max bytes,
// validating every byte up to and including the terminator. A string that
// starts valid but runs off mapped memory fails here.
func readUserString(as *mem.AddressSpace, a mem.Addr, max int) (string, bool) {
	var b []byte
	for i := 0; i < max; i++ {
		v, ok := ReadUserByte(as, a+mem.Addr(i))
		if !ok {
			return "", false
		}
		if v == 0 {
			return string(b), true
		}
		b = append(b, v)
	}
	return "", false
}
