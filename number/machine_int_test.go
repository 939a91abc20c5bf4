package number

import "testing"

func TestMachineIntWrapping(t *testing.T) {
	// 85 + 43 = 128, which overflows a signed 8-bit type and wraps to -128.
	x := MachineIntFromInt64(85, 8, Signed)
	y := MachineIntFromInt64(43, 8, Signed)
	got := x.Add(y)
	want := MachineIntFromInt64(-128, 8, Signed)
	if !got.Equal(want) {
		t.Errorf("85+43 (i8) = %v, want %v", got, want)
	}
}

func TestMachineIntOverflowFlag(t *testing.T) {
	x := MachineIntFromInt64(120, 8, Signed)
	y := MachineIntFromInt64(10, 8, Signed)
	_, overflow := x.AddOverflow(y)
	if !overflow {
		t.Error("expected overflow flag for 120+10 in i8")
	}
	x2 := MachineIntFromInt64(1, 8, Signed)
	_, overflow2 := x2.AddOverflow(y)
	if overflow2 {
		t.Error("did not expect overflow flag for 1+10 in i8")
	}
}

func TestMachineIntIncompatiblePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for incompatible machine integers")
		}
	}()
	a := MachineIntFromInt64(1, 8, Signed)
	b := MachineIntFromInt64(1, 16, Signed)
	a.Add(b)
}

func TestMachineIntTruncExt(t *testing.T) {
	x := MachineIntFromInt64(-1, 16, Signed) // 0xFFFF
	trunc := x.Trunc(8)
	want := MachineIntFromInt64(-1, 8, Signed)
	if !trunc.Equal(want) {
		t.Errorf("Trunc(-1:i16, 8) = %v, want %v", trunc, want)
	}

	y := MachineIntFromInt64(-1, 8, Signed)
	ext := y.Ext(16)
	wantExt := MachineIntFromInt64(-1, 16, Signed)
	if !ext.Equal(wantExt) {
		t.Errorf("Ext(-1:i8, 16) = %v, want %v", ext, wantExt)
	}

	u := MachineIntFromInt64(0xFF, 8, Unsigned)
	extU := u.Ext(16)
	wantExtU := MachineIntFromInt64(0xFF, 16, Unsigned)
	if !extU.Equal(wantExtU) {
		t.Errorf("Ext(255:u8, 16) = %v, want %v", extU, wantExtU)
	}
}

func TestMachineIntSignCast(t *testing.T) {
	u := MachineIntFromInt64(200, 8, Unsigned)
	s := u.SignCast(Signed)
	want := MachineIntFromInt64(200-256, 8, Signed)
	if !s.Equal(want) {
		t.Errorf("SignCast(200:u8) = %v, want %v", s, want)
	}
}

func TestMachineIntShifts(t *testing.T) {
	x := MachineIntFromInt64(-8, 8, Signed)
	one := MachineIntFromInt64(1, 8, Signed)
	got := x.Shr(one)
	want := MachineIntFromInt64(-4, 8, Signed)
	if !got.Equal(want) {
		t.Errorf("-8 >> 1 (arithmetic, i8) = %v, want %v", got, want)
	}

	ux := MachineIntFromInt64(0xF0, 8, Unsigned)
	gotU := ux.Shr(MachineIntFromInt64(1, 8, Unsigned))
	wantU := MachineIntFromInt64(0x78, 8, Unsigned)
	if !gotU.Equal(wantU) {
		t.Errorf("0xF0 >> 1 (logical, u8) = %v, want %v", gotU, wantU)
	}
}

func TestMachineIntShiftOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range shift amount")
		}
	}()
	x := MachineIntFromInt64(1, 8, Signed)
	x.Shl(MachineIntFromInt64(8, 8, Signed))
}

func TestMachineIntDivisionByZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on division by zero")
		}
	}()
	x := MachineIntFromInt64(1, 8, Signed)
	x.Div(MachineIntFromInt64(0, 8, Signed))
}

func TestMachineIntBounds(t *testing.T) {
	s := MachineIntFromInt64(0, 8, Signed)
	if !s.MinValue().Equal(FromInt64(-128)) || !s.MaxValue().Equal(FromInt64(127)) {
		t.Errorf("i8 bounds = [%v, %v]", s.MinValue(), s.MaxValue())
	}
	u := MachineIntFromInt64(0, 8, Unsigned)
	if !u.MinValue().Equal(ZeroZ) || !u.MaxValue().Equal(FromInt64(255)) {
		t.Errorf("u8 bounds = [%v, %v]", u.MinValue(), u.MaxValue())
	}
}
