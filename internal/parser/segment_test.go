package parser

import (
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantFront string
		wantBack  string
	}{
		{
			name:      "strict markers",
			raw:       "--- FRONT ---\nJohn Smith\n--- BACK ---\nwww.acme.com",
			wantFront: "John Smith",
			wantBack:  "www.acme.com",
		},
		{
			name:      "side markers from capture",
			raw:       "--- FRONT SIDE ---\nJohn Smith\n\n\n--- BACK SIDE ---\nwww.acme.com\n",
			wantFront: "John Smith",
			wantBack:  "www.acme.com",
		},
		{
			name:      "fuzzy markers",
			raw:       "--- Front (scanned) ---\nJane Doe\n--- Back (scanned) ---\nACME",
			wantFront: "Jane Doe",
			wantBack:  "ACME",
		},
		{
			name:      "lower case markers",
			raw:       "--- front ---\nJane\n--- back ---\nDoe",
			wantFront: "Jane",
			wantBack:  "Doe",
		},
		{
			name:     "back only",
			raw:      "--- BACK ---\nwww.acme.com",
			wantBack: "www.acme.com",
		},
		{
			name:      "no markers",
			raw:       "John Smith\nAcme Corp\n",
			wantFront: "John Smith\nAcme Corp",
		},
		{
			name: "empty",
			raw:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front, back := Segment(tt.raw)
			if front != tt.wantFront || back != tt.wantBack {
				t.Errorf("Segment() = (%q, %q), want (%q, %q)", front, back, tt.wantFront, tt.wantBack)
			}
		})
	}
}

func TestSegment_roundTrip(t *testing.T) {
	sides := []struct{ front, back string }{
		{"John Smith\nAcme Corp", "www.acme.com"},
		{"K.S.ANBUSELVAN B.Sc\nManaging Director", "Chennai 600107\nflow@indsatcorp.com"},
		{"Jane  Doe", "Tel 98765 43210\n\nSuite 4"},
	}
	for _, s := range sides {
		raw := "--- FRONT ---\n" + s.front + "\n--- BACK ---\n" + s.back
		front, back := Segment(raw)
		if got, want := Lines(front), Lines(s.front); !reflect.DeepEqual(got, want) {
			t.Errorf("front lines = %q, want %q", got, want)
		}
		if got, want := Lines(back), Lines(s.back); !reflect.DeepEqual(got, want) {
			t.Errorf("back lines = %q, want %q", got, want)
		}
	}
}
