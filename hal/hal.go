// Package hal abstracts the platform devices the Wren kernel drives.
package hal

// Console is the append-only console device. Writes always succeed once
// invoked.
type Console interface {
	// WriteBlock writes b to the console as a single uninterrupted block.
	WriteBlock(b []byte)
}

// Power controls machine power state.
type Power interface {
	// PowerOff powers the machine off. On real platforms it never returns;
	// test doubles may return to let the caller observe the shutdown.
	PowerOff()
}

// HAL bundles the platform devices.
type HAL interface {
	Console() Console
	Power() Power
}
