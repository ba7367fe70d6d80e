package grid

import "testing"

func TestCellCenter(t *testing.T) {
	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"northern hemisphere", Point{Lat: 41.7, Lng: -3.2}, Point{Lat: 41.5, Lng: -3.5}},
		{"exact corner", Point{Lat: 41.0, Lng: -3.0}, Point{Lat: 41.5, Lng: -2.5}},
		{"southern hemisphere", Point{Lat: -12.3, Lng: 130.9}, Point{Lat: -12.5, Lng: 130.5}},
		{"near origin", Point{Lat: 0.1, Lng: -0.1}, Point{Lat: 0.5, Lng: -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CellCenter(tt.in)
			if got != tt.want {
				t.Errorf("CellCenter(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
			// Snapping is idempotent: a center maps to itself.
			if again := CellCenter(got); again != got {
				t.Errorf("CellCenter not idempotent: %+v -> %+v", got, again)
			}
		})
	}
}

func TestGraphFileName(t *testing.T) {
	tests := []struct {
		in   Point
		want string
	}{
		{Point{Lat: 41.7, Lng: -3.2}, "-3.5, 41.5 Data.jpg"},
		{Point{Lat: -0.2, Lng: 0.7}, "0.5, -0.5 Data.jpg"},
		{Point{Lat: 10.5, Lng: 100.5}, "100.5, 10.5 Data.jpg"},
	}

	for _, tt := range tests {
		if got := GraphFileName(tt.in); got != tt.want {
			t.Errorf("GraphFileName(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGraphURL(t *testing.T) {
	got := GraphURL("/graphs/", Point{Lat: 41.7, Lng: -3.2})
	want := "/graphs/-3.5,%2041.5%20Data.jpg"
	if got != want {
		t.Errorf("GraphURL = %q, want %q", got, want)
	}
}
