package sparkline

import (
	"bytes"
	"image/png"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderProducesPNG(t *testing.T) {
	xs := []float64{0, 0.25, 0.5, 0.75, 1}
	ys := []float64{0, 1, 0.5, 0.25, 0.75}

	data, err := Render(xs, ys, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatalf("output does not start with PNG magic: % x", data[:8])
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	wantW, wantH := DefaultWidth+2*Pad, DefaultHeight+2*Pad
	if cfg.Width != wantW || cfg.Height != wantH {
		t.Errorf("canvas = %dx%d, want %dx%d", cfg.Width, cfg.Height, wantW, wantH)
	}
}

func TestRenderCustomSize(t *testing.T) {
	data, err := Render([]float64{0, 1}, []float64{0, 1}, Options{Width: 100, Height: 40})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 100+2*Pad || cfg.Height != 40+2*Pad {
		t.Errorf("canvas = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderSinglePoint(t *testing.T) {
	if _, err := Render([]float64{0.5}, []float64{0.5}, Options{}); err != nil {
		t.Fatal(err)
	}
}

func TestRenderBadSeries(t *testing.T) {
	if _, err := Render(nil, nil, Options{}); err == nil {
		t.Error("expected error for empty series")
	}
	if _, err := Render([]float64{0, 1}, []float64{0}, Options{}); err == nil {
		t.Error("expected error for mismatched series")
	}
}

func TestNormalize(t *testing.T) {
	xs, ys := Normalize([]float64{10, 20, 30}, []float64{5, 25, 15})

	wantX := []float64{0, 0.5, 1}
	for i, x := range xs {
		if x != wantX[i] {
			t.Errorf("xs[%d] = %v, want %v", i, x, wantX[i])
		}
	}
	wantY := []float64{0, 1, 0.5}
	for i, y := range ys {
		if y != wantY[i] {
			t.Errorf("ys[%d] = %v, want %v", i, y, wantY[i])
		}
	}
}

func TestNormalizeFlatSeries(t *testing.T) {
	// Equal samples on either axis must not divide by zero; a flat y
	// series sits on the baseline.
	xs, ys := Normalize([]float64{7, 7}, []float64{3, 3})
	for i := range xs {
		if xs[i] != 0 {
			t.Errorf("xs[%d] = %v, want 0", i, xs[i])
		}
		if ys[i] != 0 {
			t.Errorf("ys[%d] = %v, want 0", i, ys[i])
		}
	}
}

func TestNormalizeSmallYRange(t *testing.T) {
	// A sub-unit spread is scaled by 1, not stretched to fill the chart.
	_, ys := Normalize([]float64{0, 1}, []float64{10, 10.5})
	if ys[0] != 0 || ys[1] != 0.5 {
		t.Errorf("ys = %v, want [0 0.5]", ys)
	}
}
