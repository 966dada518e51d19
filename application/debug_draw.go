package application

import (
	"fmt"

	"skirmish/domain"
)

// drawDecision は目標・計画した経路・交戦相手・状態を描きます。
func drawDecision(debug domain.DebugSink, u *UnitRecord, d Decision, p Plan, radius float64) {
	debug.Line(u.Position, d.Goal, 0.2, domain.ColorGoal)

	if p.Fallback {
		debug.Circle(u.Position, radius*1.5, domain.ColorFallback)
	} else {
		debug.Line(u.Position, p.End, 0.1, domain.ColorPath)
	}

	if d.Engagement != nil {
		debug.Circle(d.Engagement.Goal, radius, domain.ColorTarget)
	}

	label := d.State.String()
	if d.State == Retrieving {
		label = fmt.Sprintf("%s %s", label, d.Need)
	}
	debug.Text(u.Position.Add(domain.Vec2{Y: radius * 2}), label, 1, domain.ColorText)
}
