// Package tasks holds the built-in user programs shipped with the machine.
package tasks

import (
	"strings"

	"wren/wrenos/userland"
)

// RegisterAll installs every built-in program into reg.
func RegisterAll(reg *userland.Registry) {
	reg.Register("echo", Echo)
	reg.Register("halt", Halt)
	reg.Register("launch", Launch)
}

// Echo writes its arguments to the console, space separated, and exits 0.
func Echo(env *userland.Env) int32 {
	line := strings.Join(env.Args()[1:], " ") + "\n"
	if env.Write(1, []byte(line)) < 0 {
		return 1
	}
	return 0
}

// Halt powers the machine off.
func Halt(env *userland.Env) int32 {
	env.Halt()
	return 0 // not reached
}

// Launch runs each argument as a command line, waiting for every child in
// turn. It exits with the number of children that failed to start or
// exited nonzero.
func Launch(env *userland.Env) int32 {
	var failed int32
	for _, cmdline := range env.Args()[1:] {
		pid := env.Exec(cmdline)
		if pid < 0 {
			failed++
			continue
		}
		if env.Wait(pid) != 0 {
			failed++
		}
	}
	return failed
}
