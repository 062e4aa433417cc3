package haze

import (
	"fmt"
	"testing"
)

func BenchmarkDarkChannel(b *testing.B) {
	for _, size := range []struct{ w, h int }{{640, 360}, {1280, 720}, {1920, 1080}} {
		im := randomImage(size.w, size.h, 1)
		b.Run(fmt.Sprintf("%dx%d/patch=15", size.w, size.h), func(b *testing.B) {
			b.SetBytes(int64(len(im.Pix) * 4))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := DarkChannel(im, 15); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDarkChannelNaive(b *testing.B) {
	im := randomImage(320, 180, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DarkChannelNaive(im, 15); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFullPipeline(b *testing.B) {
	im := randomImage(1280, 720, 2)
	b.SetBytes(int64(len(im.Pix) * 4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dark, err := DarkChannel(im, 15)
		if err != nil {
			b.Fatal(err)
		}
		a, err := AtmosphericLight(im, dark, 0.001)
		if err != nil {
			b.Fatal(err)
		}
		tm, err := Transmission(im, a, 0.95, 15)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := RecoverRadiance(im, a, tm, 0.1); err != nil {
			b.Fatal(err)
		}
	}
}
