package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitconv"
	unitconvmsgpack "unitconv/msgpack"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunConvert(t *testing.T) {
	out, _, err := runCLI(t, "", "-offline", "convert", "length", "meter", "foot", "1")
	require.NoError(t, err)
	assert.Equal(t, "1 미터 (m) = 3.281 피트 (ft)\n", out)

	out, _, err = runCLI(t, "", "-offline", "convert", "temperature", "celsius", "fahrenheit", "0")
	require.NoError(t, err)
	assert.Equal(t, "32\n", out, "zero input prints the bare output")

	_, _, err = runCLI(t, "", "-offline", "convert", "length", "meter", "parsec", "1")
	assert.Error(t, err)
}

func TestRunUsage(t *testing.T) {
	_, stderr, err := runCLI(t, "")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "Commands:")

	_, stderr, err = runCLI(t, "", "-offline", "frobnicate")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)

	_, stderr, err = runCLI(t, "", "-offline", "convert", "length")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "<category> <from> <to> <value>")
}

func TestRunList(t *testing.T) {
	out, _, err := runCLI(t, "", "-offline", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 16)
	assert.True(t, strings.HasPrefix(lines[0], "length"))
	assert.Contains(t, lines[0], "길이")
	assert.True(t, strings.HasPrefix(lines[15], "force"))
}

func TestRunUnits(t *testing.T) {
	out, _, err := runCLI(t, "", "-offline", "units", "currency")
	require.NoError(t, err)
	assert.Contains(t, out, "usd")
	assert.Contains(t, out, "(1300)")
	assert.Contains(t, out, "API 키")

	out, _, err = runCLI(t, "", "-offline", "units", "temperature")
	require.NoError(t, err)
	assert.Contains(t, out, "kelvin")
	assert.NotContains(t, out, "(1)", "custom units carry no factor")

	_, _, err = runCLI(t, "", "-offline", "units", "mood")
	assert.Error(t, err)
}

func TestRunSession(t *testing.T) {
	in := "1\n:to foot\n:swap\n:from parsec\n:bogus\n:quit\n"
	out, _, err := runCLI(t, in, "-offline", "session", "length")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "변환 결과가 여기에 표시됩니다\n"))
	assert.Contains(t, out, "1 미터 (m) = 0.001 킬로미터 (km)\n")
	assert.Contains(t, out, "1 미터 (m) = 3.281 피트 (ft)\n")
	assert.Contains(t, out, "3.281 피트 (ft) = 1 미터 (m)\n")
	assert.Contains(t, out, "error: unknown unit")
	assert.Contains(t, out, `error: unknown session command "bogus"`)
}

func TestRunBatch(t *testing.T) {
	var in bytes.Buffer
	for _, r := range []*unitconvmsgpack.Request{
		{ID: "1", Category: "length", From: "kilometer", To: "meter", Value: "2"},
		{ID: "2", Category: "temperature", From: "celsius", To: "fahrenheit", Value: "100"},
		{ID: "3", Category: "weight", From: "kilogram", To: "gram", Value: "abc"},
		{ID: "4", Category: "length", From: "meter", To: "parsec", Value: "1"},
		{ID: "5", Category: "currency", From: "usd", To: "krw", Value: "1"},
	} {
		require.NoError(t, unitconvmsgpack.EncodeRequest(&in, r))
	}

	out, _, err := runCLI(t, in.String(), "-offline", "batch")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "1\t2000", lines[0])
	assert.Equal(t, "2\t212", lines[1])
	assert.Equal(t, "3\t0", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "4\t0\terror: unknown unit"), lines[3])
	assert.Equal(t, "5\t1300", lines[4])
}

func TestRunBatchTruncated(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, unitconvmsgpack.EncodeRequest(&in, &unitconvmsgpack.Request{Category: "length", From: "meter", To: "foot", Value: "1"}))
	_, _, err := runCLI(t, in.String()[:in.Len()-3], "-offline", "batch")
	assert.ErrorContains(t, err, "truncated")
}

func TestRunExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct{ command, source, file string }{
		{"export-sqlite", CatalogSQLite, "catalog.db"},
		{"export-msgpack", CatalogMsgpack, "catalog.msgpack"},
		{"export-protobuf", CatalogProtobuf, "catalog.pb"},
	} {
		t.Run(tc.command, func(t *testing.T) {
			path := filepath.Join(dir, tc.file)
			_, _, err := runCLI(t, "", "-offline", tc.command, path)
			require.NoError(t, err)

			cfg := writeConfig(t, fmt.Sprintf("catalog:\n  source: %s\n  path: %s\n", tc.source, path))
			out, _, err := runCLI(t, "", "-offline", "-config", cfg, "convert", "temperature", "celsius", "fahrenheit", "100")
			require.NoError(t, err)
			assert.Equal(t, "100 섭씨 (°C) = 212 화씨 (°F)\n", out)
		})
	}
}

func TestRunQuery(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = (&unitconvmsgpack.Server{Catalog: unitconv.DefaultCatalog}).Serve(ctx, conn)
	}()
	addr := conn.LocalAddr().String()

	out, _, err := runCLI(t, "", "-offline", "query", addr, "length", "meter", "foot", "1")
	require.NoError(t, err)
	assert.Equal(t, "3.281\n", out)

	_, _, err = runCLI(t, "", "-offline", "query", addr, "length", "meter", "parsec", "1")
	assert.ErrorContains(t, err, "unknown unit")
}

func TestRunRates(t *testing.T) {
	out, _, err := runCLI(t, "", "-offline", "rates")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "source: fallback, base: USD\n"), out)
	assert.Contains(t, out, "USD 1\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"success","base_code":"USD","time_last_update_unix":1700000000,
"rates":{"USD":1,"KRW":1350,"EUR":0.9,"JPY":150,"CNY":7.2,"GBP":0.8}}`))
	}))
	defer srv.Close()
	cfg := writeConfig(t, fmt.Sprintf("rates:\n  url: %s\n  timeout: 2s\n", srv.URL))

	out, _, err = runCLI(t, "", "-config", cfg, "rates")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "source: live, base: USD, updated: 2023-11-14"), out)
	assert.Contains(t, out, "KRW 1350\n")

	out, _, err = runCLI(t, "", "-config", cfg, "convert", "currency", "usd", "krw", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "= 2700 ")
}

func TestRunCalc(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"bmi", "175", "70"}, []string{"BMI 22.9 (정상)", "56.7kg - 70.1kg", "건강한 체중"}},
		{[]string{"bmi", "160", "45"}, []string{"(저체중)", "2.4kg 정도 체중 증가"}},
		{[]string{"calorie", "male", "30", "175", "70", "1.55"}, []string{"BMR 1,696 kcal", "TDEE 2,628 kcal", "체중 유지 2,628 kcal", "탄수화물 329g"}},
		{[]string{"tip", "50000", "15", "2"}, []string{"팁 7,500원", "총액 57,500원", "1인당 28,750원"}},
		{[]string{"discount", "30000", "20"}, []string{"할인 금액 6,000원", "최종 가격 24,000원"}},
		{[]string{"salary", "36000000", "yearly"}, []string{"국민연금 135,000원", "소득세 86,600원", "실수령액 2,622,618원"}},
		{[]string{"water", "70", "moderate", "moderate", "60"}, []string{"총 3.2L", "물 2.5L", "13컵"}},
		{[]string{"exchange", "100", "usd", "krw"}, []string{"USD = 135,000", "KRW"}},
	}
	for _, tc := range tests {
		t.Run(tc.args[0], func(t *testing.T) {
			out, _, err := runCLI(t, "", append([]string{"-offline", "calc"}, tc.args...)...)
			require.NoError(t, err)
			for _, w := range tc.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestRunCalcErrors(t *testing.T) {
	_, _, err := runCLI(t, "", "-offline", "calc", "bmi", "tall", "70")
	assert.ErrorContains(t, err, "not a number")

	_, _, err = runCLI(t, "", "-offline", "calc", "water", "10")
	assert.ErrorContains(t, err, "invalid input")

	_, _, err = runCLI(t, "", "-offline", "calc", "bmi", "175")
	assert.ErrorContains(t, err, "usage")

	out, _, err := runCLI(t, "", "-offline", "calc", "help")
	require.NoError(t, err)
	assert.Contains(t, out, "calc exchange <amount> <from> <to>")
}
