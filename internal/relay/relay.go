// Package relay forwards raw receiver frames as UDP datagrams, one frame
// per datagram.
package relay

import (
	"fmt"
	"net"

	"unigps/internal/metrics"
)

type udpConn interface {
	Write(p []byte) (int, error)
	Close() error
}

type resolveFunc func(network, address string) (*net.UDPAddr, error)
type dialFunc func(network string, laddr, raddr *net.UDPAddr) (udpConn, error)

type Relay struct {
	dest    string
	conn    udpConn
	metrics *metrics.Reader
}

func New(dest string, m *metrics.Reader) (*Relay, error) {
	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return net.DialUDP(network, laddr, raddr)
	}
	r, err := newRelay(dest, net.ResolveUDPAddr, dial)
	if err != nil {
		return nil, err
	}
	r.metrics = m
	return r, nil
}

func newRelay(dest string, resolve resolveFunc, dial dialFunc) (*Relay, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve dest: %w", err)
	}

	// DialUDP selects a suitable local address automatically.
	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}
	return &Relay{dest: dest, conn: conn}, nil
}

func (r *Relay) Dest() string { return r.dest }

// Send writes frame as one datagram. Empty frames are skipped.
func (r *Relay) Send(frame []byte) error {
	if len(frame) == 0 {
		return nil
	}
	_, err := r.conn.Write(frame)
	r.metrics.RecordRelay(err)
	return err
}

func (r *Relay) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
