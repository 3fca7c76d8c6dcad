package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Source produces a rate table.
type Source interface {
	Fetch(ctx context.Context) (Table, error)
}

// HTTPSource reads a USD quoted table from a JSON endpoint shaped like
//
//	{"result":"success","base_code":"USD","time_last_update_unix":1700000000,"rates":{"KRW":1350.5}}
type HTTPSource struct {
	URL    string
	Client *http.Client
}

type payload struct {
	Result             string             `json:"result"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	Rates              map[string]float64 `json:"rates"`
}

const maxPayloadBytes = 1 << 20

func (s *HTTPSource) Fetch(ctx context.Context) (Table, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Table{}, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadBytes)).Decode(&p); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.Result != "" && p.Result != "success" {
		return Table{}, fmt.Errorf("%w: result %q", ErrMalformedPayload, p.Result)
	}

	t := Table{
		Base:   strings.ToUpper(p.BaseCode),
		Rates:  make(map[string]float64, len(p.Rates)),
		Source: SourceLive,
	}
	if t.Base == "" {
		t.Base = "USD"
	}
	for code, r := range p.Rates {
		t.Rates[strings.ToUpper(code)] = r
	}
	if p.TimeLastUpdateUnix > 0 {
		t.Updated = time.Unix(p.TimeLastUpdateUnix, 0).UTC()
	}
	if err := t.Validate(t.Base); err != nil {
		return Table{}, err
	}
	return t, nil
}
