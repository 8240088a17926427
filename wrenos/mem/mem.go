// Package mem simulates the physical memory and per-process page tables
// the Wren kernel runs against. Every access goes through an explicit
// page-table lookup; touching an unmapped page returns ErrFault instead
// of crashing, which is the fault-interception mechanism the kernel's
// user-memory guard is built on.
package mem

import (
	"errors"
	"fmt"
	"sync"
)

// Addr is a claimed user-space address. It is untrusted until the kernel
// guard has validated it; this package only checks that the page is mapped.
type Addr uint32

const (
	// PageSize is the size of one page in bytes.
	PageSize = 0x1000

	// UserTop is the kernel/user split: the first address the running
	// process may not touch. All valid user addresses lie strictly below it.
	UserTop Addr = 0xC000_0000
)

var (
	// ErrFault reports an access to an unmapped page.
	ErrFault = errors.New("mem: page fault")

	// ErrNoMemory reports physical page exhaustion.
	ErrNoMemory = errors.New("mem: out of physical pages")
)

type page [PageSize]byte

// Phys is the machine's physical page budget, shared by all address spaces.
type Phys struct {
	mu   sync.Mutex
	free int
}

// NewPhys creates a physical memory of the given number of pages.
func NewPhys(pages int) *Phys {
	return &Phys{free: pages}
}

// FreePages returns the number of unallocated pages.
func (p *Phys) FreePages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.free
}

func (p *Phys) take(n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.free < n {
		return false
	}
	p.free -= n
	return true
}

func (p *Phys) give(n int) {
	p.mu.Lock()
	p.free += n
	p.mu.Unlock()
}

// AddressSpace is one process's page table.
type AddressSpace struct {
	mu    sync.Mutex
	phys  *Phys
	pages map[Addr]*page // keyed by page base address
}

// NewAddressSpace creates an empty address space drawing pages from phys.
func NewAddressSpace(phys *Phys) *AddressSpace {
	return &AddressSpace{phys: phys, pages: make(map[Addr]*page)}
}

// Map allocates n zeroed pages starting at base. Base must be page aligned
// and the range must not overlap an existing mapping.
func (as *AddressSpace) Map(base Addr, n int) error {
	if base%PageSize != 0 {
		return fmt.Errorf("mem: map base %#x not page aligned", base)
	}
	if n <= 0 {
		return fmt.Errorf("mem: map of %d pages", n)
	}

	as.mu.Lock()
	defer as.mu.Unlock()
	for i := 0; i < n; i++ {
		if _, ok := as.pages[base+Addr(i)*PageSize]; ok {
			return fmt.Errorf("mem: page %#x already mapped", base+Addr(i)*PageSize)
		}
	}
	if !as.phys.take(n) {
		return ErrNoMemory
	}
	for i := 0; i < n; i++ {
		as.pages[base+Addr(i)*PageSize] = new(page)
	}
	return nil
}

// ReadByte reads one byte, or ErrFault if the page is unmapped.
func (as *AddressSpace) ReadByte(a Addr) (byte, error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	pg, ok := as.pages[a&^Addr(PageSize-1)]
	if !ok {
		return 0, ErrFault
	}
	return pg[a%PageSize], nil
}

// WriteByte writes one byte, or ErrFault if the page is unmapped.
func (as *AddressSpace) WriteByte(a Addr, v byte) error {
	as.mu.Lock()
	defer as.mu.Unlock()
	pg, ok := as.pages[a&^Addr(PageSize-1)]
	if !ok {
		return ErrFault
	}
	pg[a%PageSize] = v
	return nil
}

// Write copies b into the address space starting at a. The write is not
// atomic across pages; on the first unmapped page it stops with ErrFault.
func (as *AddressSpace) Write(a Addr, b []byte) error {
	for i, v := range b {
		if err := as.WriteByte(a+Addr(i), v); err != nil {
			return err
		}
	}
	return nil
}

// Read fills b from the address space starting at a.
func (as *AddressSpace) Read(a Addr, b []byte) error {
	for i := range b {
		v, err := as.ReadByte(a + Addr(i))
		if err != nil {
			return err
		}
		b[i] = v
	}
	return nil
}

// Release unmaps everything and returns the pages to the physical budget.
// The address space must not be used afterwards.
func (as *AddressSpace) Release() {
	as.mu.Lock()
	n := len(as.pages)
	as.pages = make(map[Addr]*page)
	as.mu.Unlock()
	as.phys.give(n)
}
