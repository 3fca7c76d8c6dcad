package unitconvmsgpack

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitconv"
)

func startServer(t *testing.T, metrics *unitconv.Metrics) (net.Addr, <-chan error) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{Catalog: unitconv.DefaultCatalog, Metrics: metrics}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, conn) }()
	t.Cleanup(cancel)
	return conn.LocalAddr(), errc
}

func dial(t *testing.T, addr net.Addr) *Client {
	t.Helper()
	conn, err := net.Dial("udp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &Client{Conn: conn, Timeout: 2 * time.Second}
}

func TestServerRoundTrip(t *testing.T) {
	metrics := unitconv.NewMetrics()
	addr, _ := startServer(t, metrics)
	c := dial(t, addr)

	resps, err := c.Do(context.Background(),
		&Request{ID: "a", Category: "length", From: "meter", To: "foot", Value: "1"},
		&Request{ID: "b", Category: "temperature", From: "celsius", To: "kelvin", Value: "0"},
		&Request{ID: "c", Category: "length", From: "meter", To: "parsec", Value: "1"},
	)
	require.NoError(t, err)
	require.Len(t, resps, 3)
	assert.Equal(t, "3.281", resps[0].Output)
	assert.Equal(t, "273.15", resps[1].Output)
	assert.Equal(t, "c", resps[2].ID)
	assert.Contains(t, resps[2].Error, "unknown unit")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Conversions.WithLabelValues("length", unitconv.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Conversions.WithLabelValues("length", unitconv.ResultUndefined)))
}

func TestServerIgnoresGarbage(t *testing.T) {
	addr, _ := startServer(t, nil)
	c := dial(t, addr)

	_, err := c.Conn.Write([]byte{0x01, 0x02})
	require.NoError(t, err)

	// the server keeps serving after a bad datagram
	resps, err := c.Do(context.Background(), &Request{Category: "weight", From: "kilogram", To: "gram", Value: "2"})
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "2000", resps[0].Output)
}

func TestServeStopsOnCancel(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- (&Server{Catalog: unitconv.DefaultCatalog}).Serve(ctx, conn) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestClientTimeout(t *testing.T) {
	// a bound socket that never answers
	quiet, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer quiet.Close()

	c := dial(t, quiet.LocalAddr())
	c.Timeout = 50 * time.Millisecond
	_, err = c.Do(context.Background(), &Request{Category: "length", From: "meter", To: "foot", Value: "1"})
	assert.Error(t, err)
}
