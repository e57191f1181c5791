package location

import "testing"

func TestLocationCover(t *testing.T) {
	a := New(2, 2, 5, 9)
	b := New(1, 3, 4, 1)
	got := a.Cover(b)
	want := New(1, 3, 4, 1)
	if got != want {
		t.Fatalf("cover mismatch: got=%v want=%v", got, want)
	}
	if a.Cover(Location{}) != a {
		t.Fatalf("covering a zero location must be a no-op")
	}
	if (Location{}).Cover(a) != a {
		t.Fatalf("zero location must adopt the other side")
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{At(3, 7), "3:7"},
		{New(1, 4, 2, 8), "1:2-4:8"},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String()=%q want %q", got, tt.want)
		}
	}
}
