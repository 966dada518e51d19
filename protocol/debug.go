package protocol

import "skirmish/domain"

type debugShape uint8

const (
	shapeLine debugShape = iota
	shapeCircle
	shapeText
)

type wireColor struct {
	R float64 `msgpack:"r"`
	G float64 `msgpack:"g"`
	B float64 `msgpack:"b"`
	A float64 `msgpack:"a"`
}

type debugCommand struct {
	Shape debugShape  `msgpack:"shape"`
	From  domain.Vec2 `msgpack:"from"`
	To    domain.Vec2 `msgpack:"to,omitempty"`
	Size  float64     `msgpack:"size"`
	Text  string      `msgpack:"text,omitempty"`
	Color wireColor   `msgpack:"color"`
}

type debugFrame struct {
	Tick     int            `msgpack:"tick"`
	Commands []debugCommand `msgpack:"commands"`
}

// DebugRecorder は 1 tick 分の描画命令を溜め、FrameDebug として送れるようにする DebugSink です。
type DebugRecorder struct {
	commands []debugCommand
}

func NewDebugRecorder() *DebugRecorder {
	return &DebugRecorder{}
}

func toWireColor(c domain.Color) wireColor {
	return wireColor{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (r *DebugRecorder) Line(from, to domain.Vec2, width float64, color domain.Color) {
	r.commands = append(r.commands, debugCommand{Shape: shapeLine, From: from, To: to, Size: width, Color: toWireColor(color)})
}

func (r *DebugRecorder) Circle(center domain.Vec2, radius float64, color domain.Color) {
	r.commands = append(r.commands, debugCommand{Shape: shapeCircle, From: center, Size: radius, Color: toWireColor(color)})
}

func (r *DebugRecorder) Text(at domain.Vec2, text string, size float64, color domain.Color) {
	r.commands = append(r.commands, debugCommand{Shape: shapeText, From: at, Size: size, Text: text, Color: toWireColor(color)})
}

func (r *DebugRecorder) Len() int { return len(r.commands) }

// Flush は溜めた命令を符号化して空にします。
func (r *DebugRecorder) Flush(tick int) ([]byte, error) {
	data, err := encode(FrameDebug, &debugFrame{Tick: tick, Commands: r.commands})
	r.commands = r.commands[:0]
	return data, err
}

var _ domain.DebugSink = (*DebugRecorder)(nil)
