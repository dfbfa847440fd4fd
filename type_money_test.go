package papertrade

import "testing"

func TestMoney_Arithmetic(t *testing.T) {
	amount := M(4000)
	commission := M(10)
	costBasis := amount.Add(commission)

	if got := costBasis.Round(); got != 4010.00 {
		t.Errorf("Round() = %v, want 4010.00", got)
	}
	if got := costBasis.Sub(commission).Round(); got != 4000.00 {
		t.Errorf("Sub().Round() = %v, want 4000.00", got)
	}
	if !M(0).IsZero() {
		t.Error("M(0).IsZero() = false")
	}
	if !M(-1).IsNegative() || !M(1).IsPositive() {
		t.Error("sign checks failed")
	}
}

func TestMoney_DivPrice(t *testing.T) {
	shares := M(4000).DivPrice(M(698.51))
	// a 4000 purchase at a 698.51 low yields fractional shares
	want := 4000 / 698.51
	if got := shares.AsFloat(); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("DivPrice() = %v, want %v", got, want)
	}
	// multiplying back returns the invested amount within rounding
	if got := M(698.51).Mul(shares).Round(); got != 4000.00 {
		t.Errorf("Mul() round trip = %v, want 4000.00", got)
	}
}

func TestMoney_RoundHalfAwayFromZero(t *testing.T) {
	testCases := []struct {
		in   float64
		want float64
	}{
		{in: 100.555, want: 100.56},
		{in: 100.554, want: 100.55},
		{in: -100.555, want: -100.56},
		{in: 4010, want: 4010},
	}
	for _, tc := range testCases {
		if got := M(tc.in).Round(); got != tc.want {
			t.Errorf("M(%v).Round() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMoney_String(t *testing.T) {
	if got := M(4010).String(); got != "$4,010.00" {
		t.Errorf("String() = %q, want $4,010.00", got)
	}
}

func TestQuantity_Compare(t *testing.T) {
	if !Q(5.72).LessThan(Q(6)) {
		t.Error("LessThan failed")
	}
	if !Q(3000000).GreaterThanOrEqual(Q(3000000)) {
		t.Error("GreaterThanOrEqual failed on equality")
	}
	q, err := ParseQuantity("5.726617657")
	if err != nil {
		t.Fatalf("ParseQuantity() failed: %v", err)
	}
	if q.String() != "5.726617657" {
		t.Errorf("String() = %q", q.String())
	}
}
