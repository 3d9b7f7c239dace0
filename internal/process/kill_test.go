package process

import "testing"

func TestKillTree_NonPositivePID(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{0, -1} {
		if err := KillTree(pid); err != nil {
			t.Errorf("KillTree(%d) error: %v, want nil", pid, err)
		}
	}
}

func TestKillTree_UnknownPID(t *testing.T) {
	t.Parallel()

	// No such process group exists; only the absence of a panic matters.
	_ = KillTree(999999999)
}
