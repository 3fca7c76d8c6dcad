package unitconvmsgpack

import (
	"bytes"
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"unitconv"
)

// Request is one conversion in a batch stream.
type Request struct {
	ID       string `msgpack:"id,omitempty"`
	Category string `msgpack:"category"`
	From     string `msgpack:"from"`
	To       string `msgpack:"to"`
	Value    string `msgpack:"value"`
}

type Response struct {
	ID     string  `msgpack:"id,omitempty"`
	Result float64 `msgpack:"result"`
	Output string  `msgpack:"output"`
	Error  string  `msgpack:"error,omitempty"`
}

// Handle converts req against cat.
func Handle(cat *unitconv.Catalog, req *Request) Response {
	res, err := cat.ConvertStrict(req.Category, req.From, req.To, req.Value)
	resp := Response{ID: req.ID, Result: res, Output: unitconv.Format(res)}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// RequestBuffer decodes requests from a byte stream that may arrive in
// arbitrary chunks.
type RequestBuffer struct {
	buf bytes.Buffer
}

// Feed appends data and returns every request completed by it. A partial
// trailing request stays buffered for the next call.
func (rb *RequestBuffer) Feed(data []byte) ([]*Request, error) {
	rb.buf.Write(data)

	var results []*Request
	for rb.buf.Len() > 0 {
		pending := rb.buf.Bytes()
		r := bytes.NewReader(pending)
		dec := msgpack.NewDecoder(r)

		v := new(Request)
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// not enough data yet, stop
				break
			}
			return results, err
		}
		rb.buf.Next(len(pending) - r.Len())
		results = append(results, v)
	}
	return results, nil
}

// Buffered reports how many undecoded bytes are held.
func (rb *RequestBuffer) Buffered() int {
	return rb.buf.Len()
}

func EncodeRequest(w io.Writer, req *Request) error {
	return msgpack.NewEncoder(w).Encode(req)
}

func EncodeResponse(w io.Writer, resp *Response) error {
	return msgpack.NewEncoder(w).Encode(resp)
}
