package domain

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

const eps = 1e-9

func genVec(t *rapid.T, label string) Vec2 {
	return Vec2{
		X: rapid.Float64Range(-1e4, 1e4).Draw(t, label+".x"),
		Y: rapid.Float64Range(-1e4, 1e4).Draw(t, label+".y"),
	}
}

func TestInsideCircle_MatchesDistanceSquared(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genVec(t, "p")
		c := genVec(t, "c")
		r := rapid.Float64Range(0, 1e4).Draw(t, "r")

		got := InsideCircle(p, c, r)
		want := DistanceSquared(p, c) <= r*r
		if got != want {
			t.Fatalf("InsideCircle(%v, %v, %v) = %v, want %v", p, c, r, got, want)
		}
	})
}

func TestNormalize_UnitLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genVec(t, "v")
		if v.LenSquared() < 1e-12 {
			t.Skip("zero vector")
		}
		if l := v.Normalize().Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("|Normalize(%v)| = %v, want 1", v, l)
		}
	})
}

func TestRotate_ZeroIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genVec(t, "v")
		if got := v.Rotate(0); got != v {
			t.Fatalf("Rotate(%v, 0) = %v", v, got)
		}
	})
}

func TestRotate_Inverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genVec(t, "v")
		a := rapid.Float64Range(-720, 720).Draw(t, "a")

		got := v.Rotate(a).Rotate(-a)
		tol := 1e-9 * math.Max(1, v.Len())
		if math.Abs(got.X-v.X) > tol || math.Abs(got.Y-v.Y) > tol {
			t.Fatalf("Rotate(Rotate(%v, %v), %v) = %v", v, a, -a, got)
		}
	})
}

func TestRotate_QuarterTurn(t *testing.T) {
	got := Vec2{X: 1, Y: 0}.Rotate(90)
	if math.Abs(got.X) > eps || math.Abs(got.Y-1) > eps {
		t.Errorf("Rotate((1,0), 90) = %v, want (0,1)", got)
	}
}

func TestIntersectCircleSegment(t *testing.T) {
	center := Vec2{X: 5, Y: 0}

	tests := []struct {
		name   string
		p1, p2 Vec2
		radius float64
		want   bool
	}{
		{"passes through", Vec2{X: 0, Y: 0}, Vec2{X: 10, Y: 0}, 1, true},
		{"misses above", Vec2{X: 0, Y: 2}, Vec2{X: 10, Y: 2}, 1, false},
		{"stops short", Vec2{X: 0, Y: 0}, Vec2{X: 3, Y: 0}, 1, false},
		{"ends inside", Vec2{X: 0, Y: 0}, Vec2{X: 4.5, Y: 0}, 1, true},
		{"starts inside", Vec2{X: 5.5, Y: 0}, Vec2{X: 20, Y: 0}, 1, true},
		{"starts past", Vec2{X: 7, Y: 0}, Vec2{X: 20, Y: 0}, 1, false},
		{"degenerate inside", Vec2{X: 5, Y: 0.5}, Vec2{X: 5, Y: 0.5}, 1, true},
		{"degenerate outside", Vec2{X: 0, Y: 0}, Vec2{X: 0, Y: 0}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntersectCircleSegment(tt.p1, tt.p2, center, tt.radius); got != tt.want {
				t.Errorf("IntersectCircleSegment(%v, %v) = %v, want %v", tt.p1, tt.p2, got, tt.want)
			}
		})
	}
}

func TestInSector(t *testing.T) {
	facing := Vec2{X: 10, Y: 0} // 視界半径 10

	tests := []struct {
		name string
		v    Vec2
		want bool
	}{
		{"ahead", Vec2{X: 5, Y: 0}, true},
		{"edge of range", Vec2{X: 10, Y: 0}, true},
		{"beyond range", Vec2{X: 10.5, Y: 0}, false},
		{"inside half angle", Vec2{X: 5, Y: 5}, true},
		{"outside half angle", Vec2{X: 1, Y: 5}, false},
		{"behind", Vec2{X: -5, Y: 0}, false},
		{"at origin", Vec2{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InSector(facing, tt.v, 120); got != tt.want {
				t.Errorf("InSector(%v, %v, 120) = %v, want %v", facing, tt.v, got, tt.want)
			}
		})
	}
}

func TestAngleBetween(t *testing.T) {
	if got := AngleBetween(Vec2{X: 1}, Vec2{X: -3}); math.Abs(got-180) > eps {
		t.Errorf("opposed = %v, want 180", got)
	}
	if got := AngleBetween(Vec2{X: 1}, Vec2{Y: 2}); math.Abs(got-90) > eps {
		t.Errorf("perpendicular = %v, want 90", got)
	}
	if got := AngleBetween(Vec2{}, Vec2{Y: 2}); got != 0 {
		t.Errorf("zero vector = %v, want 0", got)
	}
}

func TestItemCategory(t *testing.T) {
	tests := []struct {
		item Item
		want LootCategory
	}{
		{WeaponItem(0), CategoryMagicWand},
		{WeaponItem(2), CategoryBow},
		{AmmoItem(1, 10), CategoryStaffAmmo},
		{ShieldPotionsItem(3), CategoryShieldPotion},
		{WeaponItem(7), CategoryUnknown},
	}
	for _, tt := range tests {
		if got := tt.item.Category(); got != tt.want {
			t.Errorf("%+v.Category() = %v, want %v", tt.item, got, tt.want)
		}
	}
}
