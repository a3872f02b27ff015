package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/mindmap/pkg/errors"
)

func TestChildPosition(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		parent   Point
		existing int
		want     Point
	}{
		{"first child centered", Point{0, 0}, 0, Point{200, 0}},
		{"second child", Point{0, 0}, 1, Point{200, 40}},
		{"third child", Point{0, 0}, 2, Point{200, 80}},
		{"offset parent", Point{200, 40}, 0, Point{400, 40}},
		{"offset parent second", Point{200, 40}, 1, Point{400, 80}},
		{"negative count clamps", Point{10, 10}, -3, Point{210, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.ChildPosition(tt.parent, tt.existing)
			if got != tt.want {
				t.Errorf("ChildPosition(%v, %d) = %v, want %v", tt.parent, tt.existing, got, tt.want)
			}
		})
	}
}

func TestChildPositionDeterministic(t *testing.T) {
	cfg := Config{HorizontalSpacing: 150, VerticalSpacing: 60}
	parent := Point{X: 12.5, Y: -30}
	for k := 0; k < 10; k++ {
		a := cfg.ChildPosition(parent, k)
		b := cfg.ChildPosition(parent, k)
		if a != b {
			t.Fatalf("k=%d: %v != %v", k, a, b)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero horizontal", Config{0, 80}, true},
		{"negative vertical", Config{200, -1}, true},
		{"nan", Config{math.NaN(), 80}, true},
		{"inf", Config{200, math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestPointIsFinite(t *testing.T) {
	if !(Point{1, 2}).IsFinite() {
		t.Error("(1,2) should be finite")
	}
	if (Point{math.NaN(), 0}).IsFinite() {
		t.Error("NaN x should not be finite")
	}
	if (Point{0, math.Inf(-1)}).IsFinite() {
		t.Error("-Inf y should not be finite")
	}
}
