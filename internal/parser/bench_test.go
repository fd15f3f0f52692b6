package parser

import "testing"

const benchCard = "--- FRONT SIDE ---\n" +
	"K.S.ANBUSELVAN, B.Sc.\nManaging Director\nINDSAT CORPORATION\n" +
	"Mob: 9840012345\nEmail: FLOW @ INDSATCORP . COM\n" +
	"\n\n--- BACK SIDE ---\n" +
	"SALES & MARKETING OFFICE: 5 Nehru Road, Koyambedu, Chennai 600107\n" +
	"Plant: Plot 22, Perungudi Industrial Estate\nwww.indsatcorp.com\n"

func BenchmarkParse(b *testing.B) {
	p, err := New()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(benchCard)
	}
}

func BenchmarkNormalize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Normalize("  “K.S. Anbuselvan” — Managing Director, Müller & Söhne  ")
	}
}
