//go:build !linux

package video

// pinToHighestCPU is a no-op off Linux; CPU affinity pinning is a Linux-only
// refinement (spec.md's Non-goals exclude cross-platform display portability
// for the renderer generally).
func pinToHighestCPU() {}

// RestrictToComplementOfHighestCPU is a no-op off Linux.
func RestrictToComplementOfHighestCPU() {}
