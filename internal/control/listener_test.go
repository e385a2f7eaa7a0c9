package control

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"last-snow/internal/osc"
	"last-snow/internal/settings"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sendDatagram(t *testing.T, to net.Addr, data []byte) {
	t.Helper()
	conn, err := net.Dial("udp", to.String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(data)
	require.NoError(t, err)
}

func receive(t *testing.T, ch <-chan osc.Packet) osc.Packet {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatalf("no packet received")
	}
	return nil
}

func TestListenerDropsMalformedAndKeepsServing(t *testing.T) {
	l, err := Listen("127.0.0.1:0", zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	packets := make(chan osc.Packet)
	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx, packets) }()

	sendDatagram(t, l.Addr(), []byte("garbage"))
	valid, err := osc.Encode(osc.NewMessage(AddrMaxCharacters, int32(120)))
	require.NoError(t, err)
	sendDatagram(t, l.Addr(), valid)

	p := receive(t, packets)
	msg, ok := p.(*osc.Message)
	require.True(t, ok)
	assert.Equal(t, AddrMaxCharacters, msg.Address)
	assert.Equal(t, []any{int32(120)}, msg.Args)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not stop after cancel")
	}
	_, open := <-packets
	assert.False(t, open, "Serve must close its output channel")
}

func TestListenerEndToEnd(t *testing.T) {
	dir := t.TempDir()
	f := settings.NewFactory(dir, ".settings")
	d := NewDispatcher(f, &fakeLog{}, zap.NewNop())

	l, err := Listen("127.0.0.1:0", zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	packets := make(chan osc.Packet)
	serveDone := make(chan error, 1)
	runDone := make(chan error, 1)
	go func() { serveDone <- l.Serve(ctx, packets) }()
	go func() { runDone <- d.Run(ctx, packets) }()

	raw, err := osc.Encode(osc.NewMessage(AddrMaxSentences, int32(4)))
	require.NoError(t, err)
	sendDatagram(t, l.Addr(), raw)

	require.Eventually(t, func() bool {
		s := f.Open()
		if s.Load() != nil {
			return false
		}
		n, ok := settings.Int(s, settings.KeyMaxSentencesPerCSV)
		return ok && n == 4
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-serveDone)
	require.NoError(t, <-runDone)
}

func TestListenBadAddress(t *testing.T) {
	_, err := Listen("not-an-address", zap.NewNop())
	assert.Error(t, err)
}
