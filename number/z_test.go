package number

import "testing"

func TestZArithmetic(t *testing.T) {
	cases := []struct {
		name     string
		a, b     Z
		add, sub, mul Z
	}{
		{"small", FromInt64(3), FromInt64(4), FromInt64(7), FromInt64(-1), FromInt64(12)},
		{"negatives", FromInt64(-5), FromInt64(2), FromInt64(-3), FromInt64(-7), FromInt64(-10)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Add(c.b); !got.Equal(c.add) {
				t.Errorf("Add: got %v, want %v", got, c.add)
			}
			if got := c.a.Sub(c.b); !got.Equal(c.sub) {
				t.Errorf("Sub: got %v, want %v", got, c.sub)
			}
			if got := c.a.Mul(c.b); !got.Equal(c.mul) {
				t.Errorf("Mul: got %v, want %v", got, c.mul)
			}
		})
	}
}

func TestZDivRemMod(t *testing.T) {
	cases := []struct {
		a, b        int64
		div, rem, mod int64
	}{
		{7, 2, 3, 1, 1},
		{-7, 2, -3, -1, 1},
		{7, -2, -3, 1, -1},
		{-7, -2, 3, -1, -1},
	}
	for _, c := range cases {
		a, b := FromInt64(c.a), FromInt64(c.b)
		if got := a.Div(b); got.Cmp(FromInt64(c.div)) != 0 {
			t.Errorf("Div(%d,%d) = %v, want %d", c.a, c.b, got, c.div)
		}
		if got := a.Rem(b); got.Cmp(FromInt64(c.rem)) != 0 {
			t.Errorf("Rem(%d,%d) = %v, want %d", c.a, c.b, got, c.rem)
		}
		if got := a.Mod(b); got.Cmp(FromInt64(c.mod)) != 0 {
			t.Errorf("Mod(%d,%d) = %v, want %d", c.a, c.b, got, c.mod)
		}
	}
}

func TestZDivisionByZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on division by zero")
		}
	}()
	FromInt64(1).Div(ZeroZ)
}

func TestZNegativeShiftPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative shift")
		}
	}()
	FromInt64(1).Shl(-1)
}

func TestZGcdLcm(t *testing.T) {
	a, b := FromInt64(12), FromInt64(18)
	if got := a.Gcd(b); got.Cmp(FromInt64(6)) != 0 {
		t.Errorf("Gcd = %v, want 6", got)
	}
	if got := a.Lcm(b); got.Cmp(FromInt64(36)) != 0 {
		t.Errorf("Lcm = %v, want 36", got)
	}
}

func TestZExtGCD(t *testing.T) {
	a, b := FromInt64(35), FromInt64(15)
	g, x, y := a.ExtGCD(b)
	if got := x.Mul(a).Add(y.Mul(b)); !got.Equal(g) {
		t.Errorf("Bezout identity failed: %v*%v + %v*%v = %v, want %v", x, a, y, b, got, g)
	}
	if !g.Equal(FromInt64(5)) {
		t.Errorf("gcd(35,15) = %v, want 5", g)
	}
}

func TestZFillOnes(t *testing.T) {
	cases := []struct{ in, want int64 }{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 3},
		{4, 7},
		{5, 7},
		{9, 15},
		{16, 31},
	}
	for _, c := range cases {
		got := FromInt64(c.in).FillOnes()
		if !got.Equal(FromInt64(c.want)) {
			t.Errorf("FillOnes(%d) = %v, want %d", c.in, got, c.want)
		}
	}
}

func TestZCopyIndependence(t *testing.T) {
	a := FromInt64(100)
	b := a
	a = a.Add(FromInt64(1))
	if !b.Equal(FromInt64(100)) {
		t.Errorf("mutating a copy through Add mutated the original: b = %v", b)
	}
}
