package relay

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"unigps/internal/metrics"
)

type fakeConn struct {
	writes    [][]byte
	writeErr  error
	closed    bool
	writeHits int
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.writeHits++
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.writes = append(c.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestNewRelay_DialsResolvedAddr(t *testing.T) {
	var gotNetwork string
	var gotRaddr *net.UDPAddr
	fc := &fakeConn{}

	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		gotNetwork = network
		gotRaddr = raddr
		return fc, nil
	}

	r, err := newRelay("127.0.0.1:4000", net.ResolveUDPAddr, dial)
	if err != nil {
		t.Fatalf("newRelay() error: %v", err)
	}
	if gotNetwork != "udp" {
		t.Fatalf("network=%q want %q", gotNetwork, "udp")
	}
	if gotRaddr == nil || gotRaddr.Port != 4000 || !gotRaddr.IP.Equal(net.IPv4(127, 0, 0, 1)) {
		t.Fatalf("raddr=%v want 127.0.0.1:4000", gotRaddr)
	}
	if r.Dest() != "127.0.0.1:4000" {
		t.Fatalf("dest=%q", r.Dest())
	}
	if err := r.Close(); err != nil || !fc.closed {
		t.Fatalf("Close() error=%v closed=%v", err, fc.closed)
	}
}

func TestNewRelay_ResolveFailure(t *testing.T) {
	resolveErr := errors.New("nope")
	resolve := func(network, address string) (*net.UDPAddr, error) {
		return nil, resolveErr
	}
	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return &fakeConn{}, nil
	}

	_, err := newRelay("bad:addr", resolve, dial)
	if !errors.Is(err, resolveErr) {
		t.Fatalf("err=%v want %v", err, resolveErr)
	}
}

func TestRelay_Send(t *testing.T) {
	fc := &fakeConn{}
	r := &Relay{dest: "x", conn: fc}

	if err := r.Send(nil); err != nil {
		t.Fatalf("Send(nil) error: %v", err)
	}
	if fc.writeHits != 0 {
		t.Fatalf("expected no writes, got %d", fc.writeHits)
	}

	p := []byte{0xaa, 0x44, 0xb5}
	if err := r.Send(p); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if len(fc.writes) != 1 || string(fc.writes[0]) != string(p) {
		t.Fatalf("writes=%v want [%v]", fc.writes, p)
	}
}

func TestRelay_SendCountsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewReader()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	wantErr := errors.New("boom")
	fc := &fakeConn{}
	r := &Relay{dest: "x", conn: fc, metrics: m}
	_ = r.Send([]byte{1})
	fc.writeErr = wantErr
	if err := r.Send([]byte{2}); !errors.Is(err, wantErr) {
		t.Fatalf("err=%v want %v", err, wantErr)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	got := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "unigps_relay_packets_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				got[lp.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	if got["ok"] != 1 || got["error"] != 1 {
		t.Fatalf("relay counts=%v", got)
	}
}

func TestRelay_DeliversDatagram(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket() error: %v", err)
	}
	defer pc.Close()

	r, err := New(pc.LocalAddr().String(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer r.Close()

	if err := r.Send([]byte("$GPGLL*00\r\n")); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error: %v", err)
	}
	if string(buf[:n]) != "$GPGLL*00\r\n" {
		t.Fatalf("datagram=%q", buf[:n])
	}
}
