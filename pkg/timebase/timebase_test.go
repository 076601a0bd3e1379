package timebase

import "testing"

func TestSetAnchors(t *testing.T) {
	tr := New()
	tr.Set(12345)
	if tr.CurrentMillis() != 12345 {
		t.Fatalf("CurrentMillis() = %d, want 12345", tr.CurrentMillis())
	}
}

func TestAdvanceOneSecondOfBits(t *testing.T) {
	tr := New()
	tr.Set(0)
	tr.Advance(9600) // exactly one second at 9600 b/s
	if tr.CurrentMillis() != 1000 {
		t.Fatalf("CurrentMillis() = %d, want 1000", tr.CurrentMillis())
	}
}

func TestAdvanceAccumulatesWithoutDriftFromRounding(t *testing.T) {
	tr := New()
	tr.Set(0)
	// 96 bits at a time: 96*1000/9600 = 10ms exactly, no remainder.
	for i := 0; i < 100; i++ {
		tr.Advance(96)
	}
	if tr.CurrentMillis() != 1000 {
		t.Fatalf("CurrentMillis() = %d, want 1000", tr.CurrentMillis())
	}
}

func TestAdvanceCarriesFractionalRemainder(t *testing.T) {
	tr := New()
	tr.Set(0)
	// One bit at a time for 9600 bits should still total exactly 1000ms
	// even though 1*1000/9600 rounds to 0 on every individual call.
	for i := 0; i < 9600; i++ {
		tr.Advance(1)
	}
	if tr.CurrentMillis() != 1000 {
		t.Fatalf("CurrentMillis() = %d, want 1000 (residual must not be lost)", tr.CurrentMillis())
	}
}

func TestSetResetsResidual(t *testing.T) {
	tr := New()
	tr.Advance(1) // leaves a sub-millisecond residual
	tr.Set(500)
	tr.Advance(1)
	// residual from before Set must not leak into the new anchor
	if tr.CurrentMillis() != 500 {
		t.Fatalf("CurrentMillis() = %d, want 500", tr.CurrentMillis())
	}
}
