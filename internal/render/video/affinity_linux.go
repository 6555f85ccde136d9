//go:build linux

package video

import "golang.org/x/sys/unix"

// pinToHighestCPU affinitizes the calling OS thread to the highest-numbered
// available CPU, per spec.md §4.8. The main renderer thread is expected to
// restrict its own affinity to the complementary set.
func pinToHighestCPU() {
	var cpuset unix.CPUSet
	if err := unix.SchedGetaffinity(0, &cpuset); err != nil {
		return
	}
	highest := -1
	for i := 0; i < cpuset.Count(); i++ {
		if cpuset.IsSet(i) {
			highest = i
		}
	}
	if highest < 0 {
		return
	}
	var want unix.CPUSet
	want.Zero()
	want.Set(highest)
	_ = unix.SchedSetaffinity(0, &want)
}

// RestrictToComplementOfHighestCPU affinitizes the calling thread (the main
// renderer thread) to every CPU except the highest-numbered one, which the
// buffer thread claims exclusively.
func RestrictToComplementOfHighestCPU() {
	var cpuset unix.CPUSet
	if err := unix.SchedGetaffinity(0, &cpuset); err != nil {
		return
	}
	highest := -1
	for i := 0; i < cpuset.Count(); i++ {
		if cpuset.IsSet(i) {
			highest = i
		}
	}
	if highest < 0 {
		return
	}
	var want unix.CPUSet
	for i := 0; i < cpuset.Count(); i++ {
		if cpuset.IsSet(i) && i != highest {
			want.Set(i)
		}
	}
	_ = unix.SchedSetaffinity(0, &want)
}
