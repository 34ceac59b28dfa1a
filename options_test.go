package gammu

import "testing"

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	got := Options{}.withDefaults()
	want := DefaultOptions()

	if got.GammuJSONPath != want.GammuJSONPath {
		t.Errorf("GammuJSONPath = %q, want %q", got.GammuJSONPath, want.GammuJSONPath)
	}
	if got.Interval != want.Interval {
		t.Errorf("Interval = %v, want %v", got.Interval, want.Interval)
	}
	if got.TransmitBatchSize != want.TransmitBatchSize {
		t.Errorf("TransmitBatchSize = %d, want %d", got.TransmitBatchSize, want.TransmitBatchSize)
	}
	if got.DeleteBatchSize != want.DeleteBatchSize {
		t.Errorf("DeleteBatchSize = %d, want %d", got.DeleteBatchSize, want.DeleteBatchSize)
	}
}

func TestWithDefaultsPreservesExplicitZeroMaxAttempts(t *testing.T) {
	got := Options{MaxTransmitAttempts: 0}.withDefaults()
	if got.MaxTransmitAttempts != 0 {
		t.Errorf("MaxTransmitAttempts = %d, want 0 (explicit unlimited must survive withDefaults)", got.MaxTransmitAttempts)
	}
}

func TestWithDefaultsPreservesExplicitValue(t *testing.T) {
	got := Options{TransmitBatchSize: 8}.withDefaults()
	if got.TransmitBatchSize != 8 {
		t.Errorf("TransmitBatchSize = %d, want 8", got.TransmitBatchSize)
	}
}
