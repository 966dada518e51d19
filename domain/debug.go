package domain

//go:generate go tool mockgen -destination=./mocks/debug_mock.go -package=mocks . DebugSink

// Color は RGBA（各 0〜1）の色です。
type Color struct {
	R, G, B, A float64
}

var (
	ColorGoal     = Color{R: 0, G: 0.6, B: 0, A: 0.5}
	ColorPath     = Color{R: 0, G: 0, B: 0, A: 0.2}
	ColorTarget   = Color{R: 0.8, G: 0, B: 0, A: 0.5}
	ColorFallback = Color{R: 0.9, G: 0.5, B: 0, A: 0.6}
	ColorText     = Color{R: 0, G: 0, B: 0.8, A: 0.2}
)

// DebugSink はデバッグ描画の受け口です。観測専用で、描画の有無で判断が変わってはいけません。
type DebugSink interface {
	Line(from, to Vec2, width float64, color Color)
	Circle(center Vec2, radius float64, color Color)
	Text(at Vec2, text string, size float64, color Color)
}

// NopDebug は何も描画しない DebugSink です。
type NopDebug struct{}

func (NopDebug) Line(Vec2, Vec2, float64, Color)   {}
func (NopDebug) Circle(Vec2, float64, Color)       {}
func (NopDebug) Text(Vec2, string, float64, Color) {}

var _ DebugSink = NopDebug{}
