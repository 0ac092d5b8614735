package layout

import (
	"errors"
	"testing"

	"embedder/internal/media"
	"embedder/internal/provider"
)

func dims(width string, height *string, ratio string) provider.Dims {
	return provider.Dims{Width: width, Height: height, Ratio: ratio}
}

func ptr(s string) *string { return &s }

func storedMap(m map[string]string) Lookup {
	return func(field string) (string, bool) {
		v, ok := m[field]
		return v, ok
	}
}

func TestResolveFixed(t *testing.T) {
	tests := []struct {
		name      string
		dims      provider.Dims
		overrides map[string]string
		stored    map[string]string
		want      media.Layout
		wantErr   error
	}{
		{
			name: "height from width and ratio",
			dims: dims("640", ptr(""), "16:9"),
			want: media.Layout{Width: "640", Height: "360", HasHeight: true},
		},
		{
			name: "width from height and ratio",
			dims: dims("", ptr("480"), "4:3"),
			want: media.Layout{Width: "640", Height: "480", HasHeight: true},
		},
		{
			name: "unit carried to derived height",
			dims: dims("50%", ptr(""), "16:9"),
			want: media.Layout{Width: "50%", Height: "28.125%", HasHeight: true},
		},
		{
			name: "explicit size needs no ratio",
			dims: dims("500", ptr("300"), ""),
			want: media.Layout{Width: "500", Height: "300", HasHeight: true},
		},
		{
			name: "px unit dropped",
			dims: dims("500px", ptr("300px"), ""),
			want: media.Layout{Width: "500", Height: "300", HasHeight: true},
		},
		{
			name: "em unit kept",
			dims: dims("40em", ptr("20em"), ""),
			want: media.Layout{Width: "40em", Height: "20em", HasHeight: true},
		},
		{
			name: "whitespace stripped",
			dims: dims(" 640 ", ptr(""), " 16 : 9 "),
			want: media.Layout{Width: "640", Height: "360", HasHeight: true},
		},
		{
			name: "decimal sizes kept",
			dims: dims("33.3%", ptr("300"), ""),
			want: media.Layout{Width: "33.3%", Height: "300", HasHeight: true},
		},
		{
			name: "decimal pixel width",
			dims: dims("640.5", ptr("360"), ""),
			want: media.Layout{Width: "640.5", Height: "360", HasHeight: true},
		},
		{
			name: "decimal em width derives height",
			dims: dims("1.5em", ptr(""), "3:2"),
			want: media.Layout{Width: "1.5em", Height: "1em", HasHeight: true},
		},
		{
			name: "px unit dropped from derived height",
			dims: dims("640px", ptr(""), "16:9"),
			want: media.Layout{Width: "640", Height: "360", HasHeight: true},
		},
		{
			name: "px unit dropped from derived width",
			dims: dims("", ptr("480px"), "4:3"),
			want: media.Layout{Width: "640", Height: "480", HasHeight: true},
		},
		{
			name:    "decimal ratio rejected",
			dims:    dims("640", ptr("360"), "2.39:1"),
			want:    media.Layout{Width: "640", Height: "360", HasHeight: true},
			wantErr: media.ErrInvalidRatio,
		},
		{
			name:    "decimal ratio cannot derive height",
			dims:    dims("640", ptr(""), "2.39:1"),
			want:    media.Layout{Width: "640", Height: "0", HasHeight: true},
			wantErr: media.ErrInvalidRatio,
		},
		{
			name:    "three part ratio rejected",
			dims:    dims("640", ptr(""), "16:9:4"),
			want:    media.Layout{Width: "640", Height: "0", HasHeight: true},
			wantErr: media.ErrInvalidRatio,
		},
		{
			name: "no height dimension",
			dims: dims("300", nil, ""),
			want: media.Layout{Width: "300"},
		},
		{
			name:      "override beats stored and default",
			dims:      dims("640", ptr(""), "16:9"),
			overrides: map[string]string{"width": "1280"},
			stored:    map[string]string{"width": "800"},
			want:      media.Layout{Width: "1280", Height: "720", HasHeight: true},
		},
		{
			name:   "stored beats default",
			dims:   dims("640", ptr(""), "16:9"),
			stored: map[string]string{"width": "800", "ratio": "4:3"},
			want:   media.Layout{Width: "800", Height: "600", HasHeight: true},
		},
		{
			name:      "false override forces zero",
			dims:      dims("640", ptr("360"), "16:9"),
			overrides: map[string]string{"height": "false"},
			want:      media.Layout{Width: "640", Height: "360", HasHeight: true},
		},
		{
			name:      "false ratio disables ratio",
			dims:      dims("640", ptr("360"), "16:9"),
			overrides: map[string]string{"ratio": "false"},
			want:      media.Layout{Width: "640", Height: "360", HasHeight: true},
		},
		{
			name:    "zero ratio with missing height",
			dims:    dims("640", ptr(""), "0:0"),
			want:    media.Layout{Width: "640", Height: "0", HasHeight: true},
			wantErr: media.ErrUndefinedSize,
		},
		{
			name:    "zero ratio with explicit size",
			dims:    dims("640", ptr("360"), "16:0"),
			want:    media.Layout{Width: "640", Height: "360", HasHeight: true},
			wantErr: media.ErrInvalidRatio,
		},
		{
			name:    "malformed ratio",
			dims:    dims("640", ptr("360"), "wide"),
			want:    media.Layout{Width: "640", Height: "360", HasHeight: true},
			wantErr: media.ErrInvalidRatio,
		},
		{
			name:    "nothing at all",
			dims:    dims("", ptr(""), ""),
			want:    media.Layout{Width: "0", Height: "0", HasHeight: true},
			wantErr: media.ErrUndefinedSize,
		},
		{
			name:    "ratio alone cannot size a fixed player",
			dims:    dims("", ptr(""), "16:9"),
			want:    media.Layout{Width: "0", Height: "0", HasHeight: true},
			wantErr: media.ErrUndefinedSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.dims, tt.overrides, storedMap(tt.stored), false)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveZeroRatioReportsBoth(t *testing.T) {
	_, err := Resolve(dims("640", ptr(""), "0:0"), nil, nil, false)
	if !errors.Is(err, media.ErrInvalidRatio) {
		t.Errorf("error = %v, want ErrInvalidRatio", err)
	}
	if !errors.Is(err, media.ErrUndefinedSize) {
		t.Errorf("error = %v, want ErrUndefinedSize", err)
	}
}

func TestResolveResponsive(t *testing.T) {
	tests := []struct {
		name      string
		dims      provider.Dims
		overrides map[string]string
		want      media.Layout
		wantErr   error
	}{
		{
			name: "ratio gives padding",
			dims: dims("640", ptr(""), "16:9"),
			want: media.Layout{Width: "100%", Height: "56.25%", HasHeight: true, Padding: "56.25%"},
		},
		{
			name: "four by three",
			dims: dims("640", ptr(""), "4:3"),
			want: media.Layout{Width: "100%", Height: "75%", HasHeight: true, Padding: "75%"},
		},
		{
			name: "repeating decimals rounded",
			dims: dims("640", ptr(""), "21:9"),
			want: media.Layout{Width: "100%", Height: "42.8571%", HasHeight: true, Padding: "42.8571%"},
		},
		{
			name: "ratio from unitless size",
			dims: dims("400", ptr("300"), ""),
			want: media.Layout{Width: "100%", Height: "75%", HasHeight: true, Padding: "75%"},
		},
		{
			name: "ratio from same units",
			dims: dims("40em", ptr("10em"), ""),
			want: media.Layout{Width: "100%", Height: "25%", HasHeight: true, Padding: "25%"},
		},
		{
			name: "full width with fixed height",
			dims: dims("100%", ptr("166"), ""),
			want: media.Layout{Width: "100%", Height: "166px", HasHeight: true, Padding: "166px"},
		},
		{
			name:    "mismatched units left alone",
			dims:    dims("40em", ptr("300"), ""),
			want:    media.Layout{Width: "40em", Height: "300px", HasHeight: true},
			wantErr: media.ErrUnitMismatch,
		},
		{
			name: "width only",
			dims: dims("640", nil, ""),
			want: media.Layout{Width: "100%"},
		},
		{
			name: "width without height value",
			dims: dims("640", ptr(""), ""),
			want: media.Layout{Width: "100%", HasHeight: true},
		},
		{
			name:      "disabled ratio leaves height empty",
			dims:      dims("640", ptr(""), "16:9"),
			overrides: map[string]string{"ratio": "false"},
			want:      media.Layout{Width: "100%", HasHeight: true},
		},
		{
			name: "ratio from decimal sizes",
			dims: dims("12.5em", ptr("5em"), ""),
			want: media.Layout{Width: "100%", Height: "40%", HasHeight: true, Padding: "40%"},
		},
		{
			name:    "decimal ratio rejected",
			dims:    dims("640", ptr(""), "2.39:1"),
			want:    media.Layout{Width: "100%", HasHeight: true},
			wantErr: media.ErrInvalidRatio,
		},
		{
			name:    "three part ratio rejected",
			dims:    dims("640", ptr(""), "16:9:4"),
			want:    media.Layout{Width: "100%", HasHeight: true},
			wantErr: media.ErrInvalidRatio,
		},
		{
			name:    "nothing at all",
			dims:    dims("", ptr(""), ""),
			want:    media.Layout{Width: "0", HasHeight: true},
			wantErr: media.ErrUndefinedSize,
		},
		{
			name:    "invalid ratio falls back to size",
			dims:    dims("400", ptr("200"), "0:0"),
			want:    media.Layout{Width: "100%", Height: "50%", HasHeight: true, Padding: "50%"},
			wantErr: media.ErrInvalidRatio,
		},
		{
			name:      "ratio override",
			dims:      dims("640", ptr(""), "16:9"),
			overrides: map[string]string{"ratio": "1:1"},
			want:      media.Layout{Width: "100%", Height: "100%", HasHeight: true, Padding: "100%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.dims, tt.overrides, nil, true)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	d := dims("640", ptr(""), "16:9")
	first, _ := Resolve(d, nil, nil, true)
	second, _ := Resolve(d, nil, nil, true)
	if first != second {
		t.Errorf("layouts differ: %+v vs %+v", first, second)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{360, "360"},
		{56.25, "56.25"},
		{42.857142857142854, "42.8571"},
		{359.99999999999994, "360"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
