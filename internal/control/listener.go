package control

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"last-snow/internal/osc"
)

// Listener receives control datagrams on a UDP socket.
type Listener struct {
	conn   net.PacketConn
	logger *zap.Logger
}

func Listen(addr string, logger *zap.Logger) (*Listener, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	logger.Info("listening for control messages", zap.Stringer("addr", conn.LocalAddr()))
	return &Listener{conn: conn, logger: logger}, nil
}

func (l *Listener) Addr() net.Addr { return l.conn.LocalAddr() }

func (l *Listener) Close() error { return l.conn.Close() }

// Serve decodes datagrams into out until a receive fails or ctx is done, then
// closes out. Malformed datagrams are logged and dropped. A receive error
// ends the loop without retry; cancellation returns nil.
func (l *Listener) Serve(ctx context.Context, out chan<- osc.Packet) error {
	defer close(out)
	stop := context.AfterFunc(ctx, func() { _ = l.conn.Close() })
	defer stop()

	buf := make([]byte, osc.MTU)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.logger.Error("error receiving from socket", zap.Error(err))
			return err
		}
		l.logger.Debug("received datagram", zap.Int("size", n), zap.Stringer("from", from))

		p, err := osc.Decode(buf[:n])
		if err != nil {
			l.logger.Warn("dropping malformed datagram", zap.Stringer("from", from), zap.Error(err))
			continue
		}
		select {
		case out <- p:
		case <-ctx.Done():
			return nil
		}
	}
}
