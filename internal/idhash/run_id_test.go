package idhash

import "testing"

func TestComputeRunIDDeterministic(t *testing.T) {
	a := ComputeRunID("pool", "HOLD", 1000, 2000, 42)
	b := ComputeRunID("pool", "HOLD", 1000, 2000, 42)
	if a != b {
		t.Errorf("same inputs hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("id length %d, want 64 hex chars", len(a))
	}
}

func TestComputeRunIDDiscriminates(t *testing.T) {
	base := ComputeRunID("pool", "HOLD", 1000, 2000, 42)
	variants := []string{
		ComputeRunID("pool2", "HOLD", 1000, 2000, 42),
		ComputeRunID("pool", "PASSIVE_RANGE_90_110", 1000, 2000, 42),
		ComputeRunID("pool", "HOLD", 1001, 2000, 42),
		ComputeRunID("pool", "HOLD", 1000, 2001, 42),
		ComputeRunID("pool", "HOLD", 1000, 2000, 43),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base", i)
		}
	}
}
