package kernel

import "wren/wrenos/mem"

// fdConsole is the only descriptor the write stub implements, pending a
// real file-descriptor table.
const fdConsole = 1

// write copies the user buffer into kernel memory and writes it to the
// console as one block. ok=false reports an unreadable buffer, which the
// dispatcher treats like any other bad syscall argument. An unsupported
// descriptor is a narrower, local failure: nothing is written and -1 goes
// back to the caller, which keeps running.
func (k *Kernel) write(p *Proc, fd int32, buf mem.Addr, size uint32) (int32, bool) {
	// Validate before allocating; a valid range is bounded by the mapped
	// user memory, so size cannot stage an oversized allocation.
	if !CheckBuffer(p.as, buf, int(size)) {
		return 0, false
	}
	if fd != fdConsole {
		k.log.Warn("write to unimplemented descriptor", "pid", p.PID(), "fd", fd)
		return -1, true
	}

	data := make([]byte, size)
	if _, ok := ReadUserBytes(p.as, buf, data); !ok {
		return 0, false
	}
	k.cons.WriteBlock(data)
	return int32(size), true
}
