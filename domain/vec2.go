package domain

import "math"

// Vec2 は 2 次元の座標・速度・向きを表す値オブジェクトです。
// 向きとして使う場合は長さ 1 を慣例としますが、型としては強制しません。
type Vec2 struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

func (v Vec2) Div(k float64) Vec2 { return Vec2{X: v.X / k, Y: v.Y / k} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross は z 成分のみの外積を返します。
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

func (v Vec2) LenSquared() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec2) Len() float64 { return math.Sqrt(v.LenSquared()) }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Normalize は長さ 1 のベクトルを返します。ゼロベクトルはそのまま返します。
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Rotate は度数法の angle だけ反時計回りに回転させます。
func (v Vec2) Rotate(angle float64) Vec2 {
	a := ToRad(angle)
	cos, sin := math.Cos(a), math.Sin(a)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Perp は左手方向に 90 度回したベクトルを返します。
func (v Vec2) Perp() Vec2 { return Vec2{X: -v.Y, Y: v.X} }

// Angle は x 軸からの角度をラジアンで返します。
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// FromAngle はラジアン角から単位ベクトルを作ります。
func FromAngle(rad float64) Vec2 { return Vec2{X: math.Cos(rad), Y: math.Sin(rad)} }
