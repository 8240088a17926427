// Package sys defines the syscall ABI shared by the kernel and user
// programs: call numbers, argument layout, and the word encoding used on
// the user stack.
package sys

import "encoding/binary"

// PID identifies a process. Negative values are failure sentinels.
type PID int32

// NoProcess is returned where a process could not be created or found.
const NoProcess PID = -1

// Number is a syscall number as read from the user stack.
type Number int32

const (
	Halt Number = iota
	Exit
	Exec
	Wait
	Create
	Remove
	Open
	Filesize
	Read
	Write
	Seek
	Tell
	Close
)

func (n Number) String() string {
	switch n {
	case Halt:
		return "halt"
	case Exit:
		return "exit"
	case Exec:
		return "exec"
	case Wait:
		return "wait"
	case Create:
		return "create"
	case Remove:
		return "remove"
	case Open:
		return "open"
	case Filesize:
		return "filesize"
	case Read:
		return "read"
	case Write:
		return "write"
	case Seek:
		return "seek"
	case Tell:
		return "tell"
	case Close:
		return "close"
	default:
		return "unknown"
	}
}

// Class sorts syscall numbers into the three outcomes the dispatcher
// distinguishes: calls it handles, calls it knows but does not support,
// and numbers it has never heard of.
type Class uint8

const (
	ClassUnrecognized Class = iota
	ClassImplemented
	ClassUnsupported
)

func (c Class) String() string {
	switch c {
	case ClassImplemented:
		return "implemented"
	case ClassUnsupported:
		return "unsupported"
	default:
		return "unrecognized"
	}
}

// Class reports how the dispatcher treats n.
func (n Number) Class() Class {
	switch n {
	case Halt, Exit, Exec, Wait, Write:
		return ClassImplemented
	case Create, Remove, Open, Filesize, Read, Seek, Tell, Close:
		return ClassUnsupported
	default:
		return ClassUnrecognized
	}
}

// ArgWords returns the number of argument words n expects on the user
// stack, above the syscall number word.
func (n Number) ArgWords() int {
	switch n {
	case Exit, Exec, Wait:
		return 1
	case Write:
		return 3
	default:
		return 0
	}
}

// WordBytes is the size of one syscall argument word.
const WordBytes = 4

// PutWord encodes a word at b[0:4] (little-endian).
func PutWord(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b[0:WordBytes], v)
}

// Word decodes the word at b[0:4].
func Word(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b[0:WordBytes])
}
