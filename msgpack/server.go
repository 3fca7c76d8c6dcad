package unitconvmsgpack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"unitconv"
)

// MaxDatagram bounds one request or response datagram.
const MaxDatagram = 64 * 1024

// Server answers conversion requests sent as msgpack datagrams. Each
// datagram carries one or more complete requests; the reply datagram holds
// one response per request, in order.
type Server struct {
	// Catalog is called once per datagram so a refreshed catalog is picked
	// up without restarting.
	Catalog func() *unitconv.Catalog
	Logger  *slog.Logger
	Metrics *unitconv.Metrics
}

// Serve reads from conn until ctx is done or conn fails. It closes conn
// when ctx is cancelled.
func (s *Server) Serve(ctx context.Context, conn net.PacketConn) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logger.Info("conversion server listening", "addr", conn.LocalAddr().String())
	buf := make([]byte, MaxDatagram)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read datagram: %w", err)
		}
		s.handle(logger, conn, addr, buf[:n])
	}
}

func (s *Server) handle(logger *slog.Logger, conn net.PacketConn, addr net.Addr, data []byte) {
	var rb RequestBuffer
	reqs, err := rb.Feed(data)
	if err != nil {
		logger.Warn("malformed request datagram", "from", addr.String(), "error", err)
	} else if rb.Buffered() > 0 {
		logger.Warn("truncated request datagram", "from", addr.String(), "trailing", rb.Buffered())
	}
	if len(reqs) == 0 {
		return
	}

	cat := s.Catalog()
	var out bytes.Buffer
	for _, req := range reqs {
		resp := Handle(cat, req)
		if resp.Error != "" {
			s.Metrics.RecordConversion(req.Category, unitconv.ResultUndefined)
		} else {
			s.Metrics.RecordConversion(req.Category, unitconv.ResultOK)
		}
		if err := EncodeResponse(&out, &resp); err != nil {
			logger.Error("encode response", "id", resp.ID, "error", err)
			return
		}
	}
	if _, err := conn.WriteTo(out.Bytes(), addr); err != nil {
		logger.Warn("reply failed", "to", addr.String(), "error", err)
	}
}

var ErrShortReply = errors.New("reply is missing responses")

// Client sends request batches to a Server over a connected socket.
type Client struct {
	Conn net.Conn
	// Timeout applies when ctx carries no deadline.
	Timeout time.Duration
}

// Do sends reqs in one datagram and waits for the matching responses.
func (c *Client) Do(ctx context.Context, reqs ...*Request) ([]Response, error) {
	var out bytes.Buffer
	for _, r := range reqs {
		if err := EncodeRequest(&out, r); err != nil {
			return nil, err
		}
	}
	if out.Len() > MaxDatagram {
		return nil, fmt.Errorf("request batch of %d bytes exceeds %d", out.Len(), MaxDatagram)
	}

	deadline, ok := ctx.Deadline()
	if !ok && c.Timeout > 0 {
		deadline = time.Now().Add(c.Timeout)
	}
	if err := c.Conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	if _, err := c.Conn.Write(out.Bytes()); err != nil {
		return nil, fmt.Errorf("send requests: %w", err)
	}

	buf := make([]byte, MaxDatagram)
	n, err := c.Conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	r := bytes.NewReader(buf[:n])
	dec := msgpack.NewDecoder(r)
	resps := make([]Response, 0, len(reqs))
	for r.Len() > 0 {
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			return resps, fmt.Errorf("decode reply: %w", err)
		}
		resps = append(resps, resp)
	}
	if len(resps) != len(reqs) {
		return resps, fmt.Errorf("%w: got %d of %d", ErrShortReply, len(resps), len(reqs))
	}
	return resps, nil
}
