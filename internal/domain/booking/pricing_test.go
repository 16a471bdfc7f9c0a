package booking

import "testing"

func TestComputeTotalHomeAddsSurcharge(t *testing.T) {
	if got := ComputeTotal(399, SampleHome); got != 499 {
		t.Errorf("expected 499, got %d", got)
	}
}

func TestComputeTotalLabIsBasePrice(t *testing.T) {
	if got := ComputeTotal(399, SampleLab); got != 399 {
		t.Errorf("expected 399, got %d", got)
	}
}

func TestComputeTotalZeroPrice(t *testing.T) {
	if got := ComputeTotal(0, SampleHome); got != HomeCollectionFee {
		t.Errorf("expected %d, got %d", HomeCollectionFee, got)
	}
	if got := ComputeTotal(0, SampleLab); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
