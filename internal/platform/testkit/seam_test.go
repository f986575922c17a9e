package testkit

import "testing"

var addFn = func(a, b int) int { return a + b }

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	t.Run("swap", func(t *testing.T) {
		Swap(t, &addFn, func(a, b int) int { return 99 })
		if got := addFn(1, 2); got != 99 {
			t.Fatalf("swap did not take effect, got %d", got)
		}
	})
	if got := addFn(1, 2); got != 3 {
		t.Fatalf("swap did not restore original, got %d", got)
	}
}

func TestSerial_ReleasesOnCleanup(t *testing.T) {
	for i := 0; i < 3; i++ {
		t.Run("serial", func(t *testing.T) { Serial(t) })
	}
}
