package adapterwebsocket

import (
	"context"
	"fmt"

	"github.com/coder/websocket"

	"skirmish/domain"
)

// readLimit はスナップショット 1 フレームの上限です。障害物を含む定数フレームは既定の 32KiB を超えます。
const readLimit = 4 << 20

type wsTransport struct {
	conn *websocket.Conn
}

func NewTransportFrom(conn *websocket.Conn) domain.Transport {
	conn.SetReadLimit(readLimit)
	return &wsTransport{conn: conn}
}

// Dial はジャッジに接続し、Transport を返します。
func Dial(ctx context.Context, url string) (domain.Transport, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewTransportFrom(conn), nil
}

func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	typ, data, err := t.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageBinary {
		return nil, fmt.Errorf("unexpected %v message", typ)
	}
	return data, nil
}

func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	return t.conn.Write(ctx, websocket.MessageBinary, data)
}

func (t *wsTransport) Close(code int32, reason string) error {
	return t.conn.Close(websocket.StatusCode(code), reason)
}
