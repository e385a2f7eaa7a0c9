// Package forward sends best-effort new-row notifications to an external
// listener over UDP.
package forward

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"last-snow/internal/apperr"
	"last-snow/internal/osc"
)

// AddrNewRow is the address of the notification sent for each new record.
const AddrNewRow = "/new_row"

type UDPForwarder struct {
	bindAddr string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewUDP returns a forwarder sending from bindAddr (":0" picks any port).
func NewUDP(bindAddr string, timeout time.Duration, logger *zap.Logger) *UDPForwarder {
	return &UDPForwarder{bindAddr: bindAddr, timeout: timeout, logger: logger}
}

// Forward sends one /new_row message carrying sentence to addr. Nothing is
// read back. Errors match apperr.ErrForward.
func (f *UDPForwarder) Forward(ctx context.Context, addr, sentence string) error {
	data, err := osc.Encode(osc.NewMessage(AddrNewRow, sentence))
	if err != nil {
		return apperr.Forward("encode", err)
	}

	target, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return apperr.Forward("resolve "+addr, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", f.bindAddr)
	if err != nil {
		return apperr.Forward("bind "+f.bindAddr, err)
	}
	defer func(conn net.PacketConn) {
		_ = conn.Close()
	}(conn)

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	f.logger.Info("sending packet", zap.String("to", addr), zap.Int("bytes", len(data)))
	if _, err := conn.WriteTo(data, target); err != nil {
		return apperr.Forward("send", err)
	}
	return nil
}
