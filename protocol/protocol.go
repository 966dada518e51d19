package protocol

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"skirmish/domain"
)

var (
	ErrMalformedFrame = errors.New("protocol: malformed frame")
	ErrUnknownFrame   = errors.New("protocol: unknown frame kind")
	ErrUnknownAction  = errors.New("protocol: unknown action")
)

// FrameKind はフレームの種別です。
type FrameKind uint8

const (
	FrameConstants FrameKind = 1 // judge → bot: 試合定数（最初に一度）
	FrameSnapshot  FrameKind = 2 // judge → bot: tick ごとのスナップショット
	FrameFinish    FrameKind = 3 // judge → bot: 試合終了
	FrameOrder     FrameKind = 4 // bot → judge: 命令
	FrameDebug     FrameKind = 5 // bot → judge: デバッグ描画
)

func (k FrameKind) String() string {
	switch k {
	case FrameConstants:
		return "constants"
	case FrameSnapshot:
		return "snapshot"
	case FrameFinish:
		return "finish"
	case FrameOrder:
		return "order"
	case FrameDebug:
		return "debug"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// envelope は全フレーム共通の外側です。
//
//	kind  u8
//	body  種別ごとの msgpack
type envelope struct {
	Kind FrameKind          `msgpack:"kind"`
	Body msgpack.RawMessage `msgpack:"body"`
}

// ServerMessage は judge から届いたフレームを解いたものです。Kind に応じて片方だけが入ります。
type ServerMessage struct {
	Kind      FrameKind
	Constants *domain.Constants
	Game      *domain.Game
}

func encode(kind FrameKind, body any) ([]byte, error) {
	raw, err := msgpack.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", kind, err)
	}
	data, err := msgpack.Marshal(&envelope{Kind: kind, Body: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return data, nil
}

func decodeEnvelope(data []byte) (envelope, error) {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return env, nil
}

func EncodeConstants(c *domain.Constants) ([]byte, error) { return encode(FrameConstants, c) }

func EncodeSnapshot(g *domain.Game) ([]byte, error) { return encode(FrameSnapshot, g) }

func EncodeFinish() ([]byte, error) { return encode(FrameFinish, struct{}{}) }

// DecodeServerMessage は judge からのフレームを解きます。
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	env, err := decodeEnvelope(data)
	if err != nil {
		return ServerMessage{}, err
	}
	msg := ServerMessage{Kind: env.Kind}
	switch env.Kind {
	case FrameConstants:
		msg.Constants = new(domain.Constants)
		if err := msgpack.Unmarshal(env.Body, msg.Constants); err != nil {
			return ServerMessage{}, fmt.Errorf("%w: constants: %v", ErrMalformedFrame, err)
		}
	case FrameSnapshot:
		msg.Game = new(domain.Game)
		if err := msgpack.Unmarshal(env.Body, msg.Game); err != nil {
			return ServerMessage{}, fmt.Errorf("%w: snapshot: %v", ErrMalformedFrame, err)
		}
	case FrameFinish:
	default:
		return ServerMessage{}, fmt.Errorf("%w: %s", ErrUnknownFrame, env.Kind)
	}
	return msg, nil
}

type actionKind uint8

const (
	actionAim actionKind = iota
	actionUseShieldPotion
	actionPickup
)

type wireAction struct {
	Kind   actionKind `msgpack:"kind"`
	Shoot  bool       `msgpack:"shoot,omitempty"`
	LootID int        `msgpack:"loot_id,omitempty"`
}

type wireUnitOrder struct {
	UnitID          int         `msgpack:"unit_id"`
	TargetVelocity  domain.Vec2 `msgpack:"target_velocity"`
	TargetDirection domain.Vec2 `msgpack:"target_direction"`
	Action          *wireAction `msgpack:"action"`
}

type wireOrder struct {
	Tick  int             `msgpack:"tick"`
	Units []wireUnitOrder `msgpack:"units"`
}

func toWireAction(a domain.ActionOrder) (*wireAction, error) {
	switch a := a.(type) {
	case nil:
		return nil, nil
	case domain.ActionAim:
		return &wireAction{Kind: actionAim, Shoot: a.Shoot}, nil
	case domain.ActionUseShieldPotion:
		return &wireAction{Kind: actionUseShieldPotion}, nil
	case domain.ActionPickup:
		return &wireAction{Kind: actionPickup, LootID: a.LootID}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
}

func fromWireAction(a *wireAction) (domain.ActionOrder, error) {
	if a == nil {
		return nil, nil
	}
	switch a.Kind {
	case actionAim:
		return domain.ActionAim{Shoot: a.Shoot}, nil
	case actionUseShieldPotion:
		return domain.ActionUseShieldPotion{}, nil
	case actionPickup:
		return domain.ActionPickup{LootID: a.LootID}, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownAction, a.Kind)
	}
}

// EncodeOrder は命令をユニット id 昇順に並べて符号化します。
func EncodeOrder(tick int, order domain.Order) ([]byte, error) {
	ids := make([]int, 0, len(order.Units))
	for id := range order.Units {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	w := wireOrder{Tick: tick, Units: make([]wireUnitOrder, 0, len(ids))}
	for _, id := range ids {
		uo := order.Units[id]
		action, err := toWireAction(uo.Action)
		if err != nil {
			return nil, err
		}
		w.Units = append(w.Units, wireUnitOrder{
			UnitID:          id,
			TargetVelocity:  uo.TargetVelocity,
			TargetDirection: uo.TargetDirection,
			Action:          action,
		})
	}
	return encode(FrameOrder, &w)
}

// DecodeOrder は EncodeOrder の逆です。judge 側の実装とテストで使います。
func DecodeOrder(data []byte) (int, domain.Order, error) {
	env, err := decodeEnvelope(data)
	if err != nil {
		return 0, domain.Order{}, err
	}
	if env.Kind != FrameOrder {
		return 0, domain.Order{}, fmt.Errorf("%w: want order, got %s", ErrUnknownFrame, env.Kind)
	}
	var w wireOrder
	if err := msgpack.Unmarshal(env.Body, &w); err != nil {
		return 0, domain.Order{}, fmt.Errorf("%w: order: %v", ErrMalformedFrame, err)
	}
	order := domain.NewOrder()
	for _, u := range w.Units {
		action, err := fromWireAction(u.Action)
		if err != nil {
			return 0, domain.Order{}, err
		}
		order.Units[u.UnitID] = domain.UnitOrder{
			TargetVelocity:  u.TargetVelocity,
			TargetDirection: u.TargetDirection,
			Action:          action,
		}
	}
	return w.Tick, order, nil
}
