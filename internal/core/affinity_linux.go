//go:build linux

package core

/*
subscope — subdomain discovery over Certificate Transparency logs, in Go
Copyright (C) 2026  subscope contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"log"
	"runtime"

	"golang.org/x/sys/unix"
)

// setWorkerAffinity binds the worker's OS thread to a core, round-robin over
// the available CPUs. Probe workers are I/O bound, so this only keeps timer
// and socket wakeups local; failure is logged and ignored.
func setWorkerAffinity(workerID int) {
	// LockOSThread keeps the goroutine on the thread whose affinity we set.
	// The worker runs for the lifetime of the pool, so no unlock.
	runtime.LockOSThread()

	var cpuSet unix.CPUSet
	cpuSet.Zero()
	cpuSet.Set(workerID % runtime.NumCPU())

	tid := unix.Gettid()
	if err := unix.SchedSetaffinity(tid, &cpuSet); err != nil {
		log.Printf("Warning: failed to set CPU affinity for worker %d (tid %d): %v", workerID, tid, err)
	}
}
