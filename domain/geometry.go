package domain

import "math"

func ToRad(deg float64) float64 { return deg * math.Pi / 180 }

func ToDeg(rad float64) float64 { return rad * 180 / math.Pi }

func Distance(a, b Vec2) float64 { return math.Sqrt(DistanceSquared(a, b)) }

func DistanceSquared(a, b Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// InsideCircle は p が中心 c・半径 r の円の内側（境界を含む）にあるかを返します。
func InsideCircle(p, c Vec2, r float64) bool {
	return DistanceSquared(p, c) <= r*r
}

// AngleBetween は 2 ベクトルのなす角を度数法 [0, 180] で返します。
// どちらかがゼロベクトルなら 0 を返します。
func AngleBetween(a, b Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	c = math.Max(-1, math.Min(1, c))
	return ToDeg(math.Acos(c))
}

// InSector は v が d を軸とする扇形（全角 angle 度、半径 |d|）に含まれるかを返します。
// |v| ≤ |d| かつ cos(angle/2) ≤ d·v / (|d||v|) のとき真です。
func InSector(d, v Vec2, angle float64) bool {
	rq0 := d.LenSquared()
	rq := v.LenSquared()
	if rq0 < rq {
		return false
	}
	if rq == 0 {
		return true
	}
	return d.Dot(v)/math.Sqrt(rq0*rq) >= math.Cos(ToRad(angle/2))
}

// IntersectCircleSegment は線分 p1-p2 が中心 center・半径 radius の円の内部を通るかを返します。
// 線分上で円中心に最も近い点との距離で判定します。
func IntersectCircleSegment(p1, p2, center Vec2, radius float64) bool {
	x01 := p1.X - center.X
	y01 := p1.Y - center.Y
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y

	a := dx*dx + dy*dy
	b := 2 * (x01*dx + y01*dy)
	c := x01*x01 + y01*y01 - radius*radius

	// 最近点が p1 側の端
	if -b < 0 {
		return c < 0
	}
	// 最近点が線分の内部
	if -b < 2*a {
		return 4*a*c-b*b < 0
	}
	// 最近点が p2 側の端
	return a+b+c < 0
}

// Lerp は a と b を t で線形補間します。
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }
