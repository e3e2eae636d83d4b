package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestReaderCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewReader()
	require.NoError(t, r.Register(reg))

	r.RecordFrame("uni", "TEST12", 33)
	r.RecordFrame("nmea", "GNGGA", 70)
	r.RecordFiltered("rtcm3")
	r.RecordError("validation")
	r.RecordDiscard(5)
	r.RecordRelay(nil)
	r.RecordRelay(errors.New("unreachable"))

	assert.Equal(t, 2.0, counterValue(t, reg, "unigps_reader_frames_total"))
	assert.Equal(t, 103.0, counterValue(t, reg, "unigps_reader_frame_bytes_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "unigps_reader_filtered_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "unigps_reader_errors_total"))
	assert.Equal(t, 5.0, counterValue(t, reg, "unigps_reader_discarded_bytes_total"))
	assert.Equal(t, 2.0, counterValue(t, reg, "unigps_relay_packets_total"))

	require.Error(t, r.Register(reg))
}

func TestNilReader(t *testing.T) {
	var r *Reader
	assert.NotPanics(t, func() {
		r.RecordFrame("uni", "TEST12", 1)
		r.RecordFiltered("uni")
		r.RecordError("parse")
		r.RecordDiscard(1)
		r.RecordRelay(nil)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewReader()
	require.NoError(t, r.Register(reg))
	r.RecordFrame("uni", "BESTNAV", 152)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `unigps_reader_frames_total{identity="BESTNAV",protocol="uni"} 1`)
}
