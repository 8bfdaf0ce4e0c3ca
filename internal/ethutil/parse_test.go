package ethutil

import "testing"

func TestParseAmountList(t *testing.T) {
	got, err := ParseAmountList("1000, 2_000;3000\n1000")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	want := []string{"1000", "2000", "3000"}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("got[%d]=%s want %s", i, got[i], want[i])
		}
	}
}

func TestParseAmountList_Empty(t *testing.T) {
	got, err := ParseAmountList("   ")
	if err != nil || got != nil {
		t.Fatalf("got=%v err=%v want nil,nil", got, err)
	}
}

func TestParseAmountList_Rejects(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-5", "1000,xyz"} {
		if _, err := ParseAmountList(raw); err == nil {
			t.Fatalf("ParseAmountList(%q) expected error", raw)
		}
	}
}

func TestParseAddress(t *testing.T) {
	if _, err := ParseAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"); err != nil {
		t.Fatalf("err=%v", err)
	}
	for _, raw := range []string{"", "0x123", "0x0000000000000000000000000000000000000000"} {
		if _, err := ParseAddress(raw); err == nil {
			t.Fatalf("ParseAddress(%q) expected error", raw)
		}
	}
}
