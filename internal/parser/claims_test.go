package parser

import (
	"reflect"
	"testing"
)

func TestClaims_immutable(t *testing.T) {
	st := newSideText("John Smith\njohn@acme.com\nAcme Corp")
	base := Claims{}
	withLine := base.withLine(0)
	if base.LineClaimed(0) {
		t.Error("withLine mutated the receiver")
	}
	if !withLine.LineClaimed(0) {
		t.Error("line 0 should be claimed")
	}

	// "john@acme.com" starts after "John Smith ".
	start := len("John Smith ")
	withSpan := withLine.withSpan(st, start, start+len("john@acme.com"))
	if withLine.SpanClaimed(start, start+1) {
		t.Error("withSpan mutated the receiver")
	}
	if !withSpan.LineClaimed(1) || withSpan.LineClaimed(2) {
		t.Errorf("span should claim exactly line 1, claims = %+v", withSpan)
	}
	if withSpan.Len() != 2 {
		t.Errorf("Len() = %d, want 2", withSpan.Len())
	}
}

func TestSideText_linesInSpan(t *testing.T) {
	st := newSideText("ab\ncd\nef")
	if st.full != "ab cd ef" {
		t.Fatalf("full = %q", st.full)
	}
	tests := []struct {
		start, end int
		want       []int
	}{
		{0, 2, []int{0}},
		{2, 3, nil},
		{1, 4, []int{0, 1}},
		{0, 8, []int{0, 1, 2}},
	}
	for _, tt := range tests {
		if got := st.linesInSpan(tt.start, tt.end); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("linesInSpan(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}
