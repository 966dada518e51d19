package application

import (
	"math"
	"testing"

	"go.uber.org/mock/gomock"

	"skirmish/domain"
	"skirmish/domain/mocks"
)

func newArbiterWorld(t *testing.T) (*World, *Arbiter) {
	t.Helper()
	ctrl := gomock.NewController(t)
	rng := mocks.NewMockRandom(ctrl)
	rng.EXPECT().Float64().Return(0.25).AnyTimes()

	w := NewWorld(newTestConstants(), newTestTuning())
	return w, NewArbiter(w, NewTargeting(w), rng)
}

func decide(t *testing.T, w *World, a *Arbiter, id int) Decision {
	t.Helper()
	a.Sync()
	u, ok := w.Unit(id)
	if !ok {
		t.Fatalf("unit %d not in world", id)
	}
	return a.Decide(u)
}

func TestArbiter_RetrievesAndPicksUpPotions(t *testing.T) {
	w, a := newArbiterWorld(t)
	potions := domain.Loot{ID: 10, Position: domain.Vec2{X: 10}, Item: domain.ShieldPotionsItem(3)}

	g := newGame(0, unitAt(1, myPlayer, domain.Vec2{}))
	g.Loot = []domain.Loot{potions}
	w.Update(g)

	d := decide(t, w, a, 1)
	if d.State != Retrieving || d.Need != NeedPotions {
		t.Fatalf("got State=%v Need=%v, want retrieving potions", d.State, d.Need)
	}
	if d.Goal != potions.Position {
		t.Errorf("Goal = %v, want %v", d.Goal, potions.Position)
	}
	if d.Action != nil {
		t.Errorf("Action = %#v, want none while walking", d.Action)
	}
	if d.Facing != (domain.Vec2{X: 1}) {
		t.Errorf("Facing = %v, want movement direction (1, 0)", d.Facing)
	}

	g = newGame(1, unitAt(1, myPlayer, domain.Vec2{X: 9.5}))
	g.Loot = []domain.Loot{potions}
	w.Update(g)

	d = decide(t, w, a, 1)
	if d.Action != (domain.ActionPickup{LootID: 10}) {
		t.Fatalf("Action = %#v, want pickup of 10", d.Action)
	}
	if _, ok := w.LootByID(10); ok {
		t.Error("picked-up stack of 3 still in world")
	}
	s, _ := a.StateOf(1)
	if s.State != Exploring || len(s.Claims) != 0 {
		t.Errorf("after pickup State=%v Claims=%v, want exploring without claims", s.State, s.Claims)
	}
	if s.Goal != potions.Position {
		t.Errorf("Goal after pickup = %v, want kept %v", s.Goal, potions.Position)
	}
}

func TestArbiter_PickupDecrementsLargeStack(t *testing.T) {
	w, a := newArbiterWorld(t)
	me := armed(unitAt(1, myPlayer, domain.Vec2{X: 0.5}), 2, 4) // 弓の上限 20
	g := newGame(0, me)
	g.Loot = []domain.Loot{{ID: 10, Position: domain.Vec2{}, Item: domain.AmmoItem(2, 30)}}
	w.Update(g)

	d := decide(t, w, a, 1)
	if d.Action != (domain.ActionPickup{LootID: 10}) {
		t.Fatalf("Action = %#v, want pickup", d.Action)
	}
	l, ok := w.LootByID(10)
	if !ok || l.Amount != 14 {
		t.Errorf("remaining stack = %v, %v, want 14", l, ok)
	}
}

func TestArbiter_ClaimsAreExclusive(t *testing.T) {
	w, a := newArbiterWorld(t)
	loot := []domain.Loot{
		{ID: 10, Position: domain.Vec2{X: 10}, Item: domain.ShieldPotionsItem(2)},
		{ID: 11, Position: domain.Vec2{X: 13}, Item: domain.ShieldPotionsItem(2)},
		{ID: 12, Position: domain.Vec2{X: 40}, Item: domain.ShieldPotionsItem(2)},
	}
	g := newGame(0, unitAt(1, myPlayer, domain.Vec2{}), unitAt(2, myPlayer, domain.Vec2{Y: 2}))
	g.Loot = loot
	w.Update(g)

	d1 := decide(t, w, a, 1)
	d2 := decide(t, w, a, 2)

	if d1.Goal != (domain.Vec2{X: 10}) {
		t.Errorf("unit 1 goal = %v, want (10, 0)", d1.Goal)
	}
	if d2.Goal != (domain.Vec2{X: 40}) {
		t.Errorf("unit 2 goal = %v, want the only unclaimed (40, 0)", d2.Goal)
	}
	want := map[int]int{10: 1, 11: 1, 12: 2}
	for lootID, unitID := range want {
		if got, ok := a.ClaimedBy(lootID); !ok || got != unitID {
			t.Errorf("ClaimedBy(%d) = %d, %v, want %d", lootID, got, ok, unitID)
		}
	}
	s1, _ := a.StateOf(1)
	s2, _ := a.StateOf(2)
	for id := range s1.Claims {
		if _, dup := s2.Claims[id]; dup {
			t.Errorf("loot %d claimed by both units", id)
		}
	}

	// 1 が消えたら予約も消える
	g = newGame(1, unitAt(2, myPlayer, domain.Vec2{Y: 2}))
	g.Loot = loot
	w.Update(g)
	a.Sync()
	if _, ok := a.ClaimedBy(11); ok {
		t.Error("claim of vanished unit kept")
	}
	if _, ok := a.StateOf(1); ok {
		t.Error("state of vanished unit kept")
	}
}

func TestArbiter_SpawningUnitExplores(t *testing.T) {
	w, a := newArbiterWorld(t)
	me := unitAt(1, myPlayer, domain.Vec2{})
	me.RemainingSpawnTime = ptr(3.0)
	g := newGame(0, me)
	g.Loot = []domain.Loot{{ID: 10, Position: domain.Vec2{X: 0.5}, Item: domain.ShieldPotionsItem(2)}}
	w.Update(g)

	d := decide(t, w, a, 1)
	if d.State != Exploring || d.Action != nil {
		t.Errorf("got State=%v Action=%#v, want exploring without action", d.State, d.Action)
	}
	if _, ok := a.ClaimedBy(10); ok {
		t.Error("spawning unit claimed loot")
	}
}

func TestArbiter_ExploreGoal(t *testing.T) {
	zone := domain.Zone{CurrentRadius: 50, NextCenter: domain.Vec2{X: 10}, NextRadius: 20}
	onNextCircle := domain.Vec2{X: 10, Y: 20} // rng 0.25 -> 90 度

	tests := []struct {
		name string
		prev domain.Vec2
		want domain.Vec2
	}{
		{"unset goal is drawn", domain.Vec2{}, onNextCircle},
		{"goal outside zone is redrawn", domain.Vec2{X: 100}, onNextCircle},
		{"reached goal is redrawn", domain.Vec2{X: 1}, onNextCircle},
		{"goal inside zone is kept", domain.Vec2{X: 30}, domain.Vec2{X: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, a := newArbiterWorld(t)
			g := newGame(0, unitAt(1, myPlayer, domain.Vec2{}))
			g.Zone = zone
			w.Update(g)

			s := a.stateFor(1)
			s.exploreGoal = tt.prev
			d := decide(t, w, a, 1)

			if d.State != Exploring {
				t.Fatalf("State = %v, want exploring", d.State)
			}
			if math.Abs(d.Goal.X-tt.want.X) > 1e-9 || math.Abs(d.Goal.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Goal = %v, want %v", d.Goal, tt.want)
			}
		})
	}
}

func TestArbiter_ExploreGoalAfterLeavingState(t *testing.T) {
	onNextCircle := func(t *testing.T, g, center domain.Vec2, radius float64) {
		t.Helper()
		if d := domain.Distance(g, center); math.Abs(d-radius) > 1e-9 {
			t.Errorf("Goal = %v is %v from next zone center, want %v", g, d, radius)
		}
	}

	t.Run("retreat from engagement", func(t *testing.T) {
		w, a := newArbiterWorld(t)
		hostile := unitAt(50, enemyPlayer, domain.Vec2{X: 15})
		me := armed(unitAt(1, myPlayer, domain.Vec2{}), 0, 50)

		g := newGame(0, me, hostile)
		w.Update(g)
		if d := decide(t, w, a, 1); d.State != Engaging {
			t.Fatalf("State = %v, want engaging", d.State)
		}

		me.Health, me.Shield = 30, 0
		g = newGame(1, me, hostile)
		w.Update(g)
		d := decide(t, w, a, 1)
		if d.Prev != Engaging || d.State != Exploring {
			t.Fatalf("transition %v -> %v, want engaging -> exploring", d.Prev, d.State)
		}
		if d.Goal == hostile.Position {
			t.Fatalf("Goal = %v, still the hostile position", d.Goal)
		}
		onNextCircle(t, d.Goal, g.Zone.NextCenter, g.Zone.NextRadius)
	})

	t.Run("retrieved loot vanishes", func(t *testing.T) {
		w, a := newArbiterWorld(t)
		me := unitAt(1, myPlayer, domain.Vec2{})

		g := newGame(0, me)
		g.Loot = []domain.Loot{{ID: 10, Position: domain.Vec2{X: 20}, Item: domain.ShieldPotionsItem(2)}}
		w.Update(g)
		if d := decide(t, w, a, 1); d.State != Retrieving || d.Goal != (domain.Vec2{X: 20}) {
			t.Fatalf("got State=%v Goal=%v, want retrieving (20, 0)", d.State, d.Goal)
		}

		g = newGame(1, me)
		w.Update(g)
		d := decide(t, w, a, 1)
		if d.Prev != Retrieving || d.State != Exploring {
			t.Fatalf("transition %v -> %v, want retrieving -> exploring", d.Prev, d.State)
		}
		if d.Goal == (domain.Vec2{X: 20}) {
			t.Fatalf("Goal = %v, still the vanished loot position", d.Goal)
		}
		onNextCircle(t, d.Goal, g.Zone.NextCenter, g.Zone.NextRadius)

		// 到着するまで同じ探索目標を保つ
		w.Update(newGame(2, me))
		if next := decide(t, w, a, 1); next.Goal != d.Goal {
			t.Errorf("Goal = %v on the next tick, want kept %v", next.Goal, d.Goal)
		}
	})
}

func TestArbiter_ClaimsStayExclusiveThroughEngagement(t *testing.T) {
	w, a := newArbiterWorld(t)
	near := []domain.Loot{
		{ID: 10, Position: domain.Vec2{X: 10}, Item: domain.ShieldPotionsItem(2)},
		{ID: 11, Position: domain.Vec2{X: 13}, Item: domain.ShieldPotionsItem(2)},
	}
	far := []domain.Loot{
		{ID: 12, Position: domain.Vec2{X: 40}, Item: domain.ShieldPotionsItem(2)},
		{ID: 13, Position: domain.Vec2{X: 43}, Item: domain.ShieldPotionsItem(2)},
	}
	behind := domain.Loot{ID: 14, Position: domain.Vec2{X: -45}, Item: domain.ShieldPotionsItem(2)}

	fighter := armed(unitAt(1, myPlayer, domain.Vec2{}), 0, 50)
	carrier := unitAt(2, myPlayer, domain.Vec2{Y: 2})

	checkClaims := func(t *testing.T, want map[int]int) {
		t.Helper()
		for lootID, unitID := range want {
			if got, ok := a.ClaimedBy(lootID); !ok || got != unitID {
				t.Errorf("ClaimedBy(%d) = %d, %v, want %d", lootID, got, ok, unitID)
			}
		}
		s1, _ := a.StateOf(1)
		s2, _ := a.StateOf(2)
		for id := range s1.Claims {
			if _, dup := s2.Claims[id]; dup {
				t.Errorf("loot %d claimed by both units", id)
			}
		}
	}

	g := newGame(0, fighter, carrier)
	g.Loot = append(append(append([]domain.Loot{}, near...), far...), behind)
	w.Update(g)
	decide(t, w, a, 1)
	if d := decide(t, w, a, 2); d.Goal != (domain.Vec2{X: 40}) {
		t.Fatalf("unit 2 goal = %v, want (40, 0)", d.Goal)
	}
	checkClaims(t, map[int]int{10: 1, 11: 1, 12: 2, 13: 2})

	// 遠いアイテムが拾われ、1 は敵と交戦して予約を手放す
	g = newGame(1, fighter, carrier, unitAt(50, enemyPlayer, domain.Vec2{X: 15}))
	g.Loot = append(append([]domain.Loot{}, near...), behind)
	w.Update(g)
	if d := decide(t, w, a, 1); d.State != Engaging {
		t.Fatalf("unit 1 State = %v, want engaging", d.State)
	}
	if d := decide(t, w, a, 2); d.State != Retrieving || d.Goal != (domain.Vec2{X: 10}) {
		t.Fatalf("unit 2 got State=%v Goal=%v, want retrieving the released (10, 0)", d.State, d.Goal)
	}
	checkClaims(t, map[int]int{10: 2, 11: 2})

	// 敵が見えていた場所から消えたので、1 は残りの塊を選び直す
	g = newGame(2, fighter, carrier)
	g.Loot = append(append([]domain.Loot{}, near...), behind)
	w.Update(g)
	d1 := decide(t, w, a, 1)
	decide(t, w, a, 2)
	if d1.Prev != Engaging || d1.State != Retrieving {
		t.Fatalf("unit 1 transition %v -> %v, want engaging -> retrieving", d1.Prev, d1.State)
	}
	if d1.Goal != behind.Position {
		t.Errorf("unit 1 goal = %v, want unclaimed %v", d1.Goal, behind.Position)
	}
	checkClaims(t, map[int]int{10: 2, 11: 2, 14: 1})
	if s1, _ := a.StateOf(1); len(s1.Claims) != 1 {
		t.Errorf("unit 1 Claims = %v, want only 14", s1.Claims)
	}
}

func TestArbiter_EngagesAndReleasesClaims(t *testing.T) {
	w, a := newArbiterWorld(t)
	me := armed(unitAt(1, myPlayer, domain.Vec2{}), 0, 50)
	potions := []domain.Loot{{ID: 10, Position: domain.Vec2{Y: -10}, Item: domain.ShieldPotionsItem(2)}}

	g := newGame(0, me)
	g.Loot = potions
	w.Update(g)
	if d := decide(t, w, a, 1); d.State != Retrieving {
		t.Fatalf("State = %v, want retrieving", d.State)
	}

	g = newGame(1, me, unitAt(50, enemyPlayer, domain.Vec2{X: 15}))
	g.Loot = potions
	w.Update(g)
	d := decide(t, w, a, 1)

	if d.Prev != Retrieving || d.State != Engaging {
		t.Fatalf("transition %v -> %v, want retrieving -> engaging", d.Prev, d.State)
	}
	if d.Action != (domain.ActionAim{Shoot: true}) {
		t.Errorf("Action = %#v, want fire", d.Action)
	}
	if d.Goal != (domain.Vec2{X: 15}) {
		t.Errorf("Goal = %v, want hostile position", d.Goal)
	}
	if _, ok := a.ClaimedBy(10); ok {
		t.Error("claims kept while engaging")
	}

	// 敵が見えなくなれば回収に戻る
	g = newGame(2, me)
	g.Loot = potions
	w.Update(g)
	d = decide(t, w, a, 1)
	if d.Prev != Engaging || d.State != Retrieving {
		t.Errorf("transition %v -> %v, want engaging -> retrieving", d.Prev, d.State)
	}
}

func TestArbiter_UsesShieldPotion(t *testing.T) {
	tests := []struct {
		name    string
		shield  float64
		potions int
		busy    bool
		want    bool
	}{
		{"low shield", 100, 3, false, true},
		{"shield nearly full", 180, 3, false, false},
		{"no potions", 0, 0, false, false},
		{"already acting", 0, 3, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, a := newArbiterWorld(t)
			me := unitAt(1, myPlayer, domain.Vec2{})
			me.Shield = tt.shield
			me.ShieldPotions = tt.potions
			if tt.busy {
				me.Action = &domain.UnitAction{Type: domain.ActionLooting, FinishTick: 5}
			}
			w.Update(newGame(0, me))

			d := decide(t, w, a, 1)
			_, got := d.Action.(domain.ActionUseShieldPotion)
			if got != tt.want {
				t.Errorf("Action = %#v, want potion %v", d.Action, tt.want)
			}
		})
	}
}

func TestArbiter_FacesRecentSound(t *testing.T) {
	w, a := newArbiterWorld(t)
	g := newGame(0, unitAt(1, myPlayer, domain.Vec2{}))
	g.Sounds = []domain.Sound{{UnitID: 1, Position: domain.Vec2{Y: -5}}}
	w.Update(g)

	d := decide(t, w, a, 1)
	if d.Facing != (domain.Vec2{Y: -1}) {
		t.Errorf("Facing = %v, want toward sound (0, -1)", d.Facing)
	}

	w.Update(newGame(100, unitAt(1, myPlayer, domain.Vec2{})))
	d = decide(t, w, a, 1)
	want := domain.Vec2{X: 1}.Rotate(newTestTuning().ScanTurnDeg)
	if math.Abs(d.Facing.X-want.X) > 1e-9 || math.Abs(d.Facing.Y-want.Y) > 1e-9 {
		t.Errorf("Facing = %v, want scan turn %v", d.Facing, want)
	}
}
