package unitconv

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLengthSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	s, err := NewSession(DefaultCatalog(), "length", opts...)
	require.NoError(t, err)
	return s
}

func TestNewSessionDefaults(t *testing.T) {
	s := newLengthSession(t)
	st := s.State()

	_, err := uuid.Parse(st.ID)
	assert.NoError(t, err)
	assert.Equal(t, s.ID, st.ID)
	assert.Equal(t, "length", st.Category)
	assert.Equal(t, "meter", st.FromUnit)
	assert.Equal(t, "kilometer", st.ToUnit)
	assert.Equal(t, "", st.Input)
	assert.Equal(t, "0", st.Output)
	assert.Equal(t, Placeholder, st.ResultText)

	_, err = NewSession(DefaultCatalog(), "luminosity")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestSingleUnitCategoryUsesSameUnitTwice(t *testing.T) {
	cat, err := NewCatalog(Linear("ratio", "비율", Unit{Key: "one", Name: "one", ToBase: 1}))
	require.NoError(t, err)
	s, err := NewSession(cat, "ratio")
	require.NoError(t, err)
	assert.Equal(t, "one", s.State().FromUnit)
	assert.Equal(t, "one", s.State().ToUnit)
}

func TestSessionInputAndUnits(t *testing.T) {
	s := newLengthSession(t)

	s.SetInput("1500")
	st := s.State()
	assert.Equal(t, "1.5", st.Output)
	assert.Equal(t, "1500 미터 (m) = 1.5 킬로미터 (km)", st.ResultText)

	require.NoError(t, s.SetToUnit("foot"))
	assert.Equal(t, "4921.26", s.State().Output)

	require.NoError(t, s.SetFromUnit("inch"))
	assert.Equal(t, "125", s.State().Output)

	assert.ErrorIs(t, s.SetToUnit("parsec"), ErrUnknownUnit)
	assert.Equal(t, "foot", s.State().ToUnit, "failed change keeps state")

	s.SetInput("0")
	assert.Equal(t, Placeholder, s.State().ResultText)
	s.SetInput("abc")
	assert.Equal(t, "0", s.State().Output)
	assert.Equal(t, Placeholder, s.State().ResultText)
}

func TestSessionSwapFeedsDisplayedOutput(t *testing.T) {
	s := newLengthSession(t)
	require.NoError(t, s.SetToUnit("foot"))
	s.SetInput("1")
	before := s.State()
	require.Equal(t, "3.281", before.Output)

	s.Swap()
	after := s.State()
	assert.Equal(t, before.ToUnit, after.FromUnit)
	assert.Equal(t, before.FromUnit, after.ToUnit)
	assert.Equal(t, before.Output, after.Input)
	// 3.281 ft is not exactly 1 m: the displayed value was fed back
	assert.Equal(t, "1", after.Output)
	assert.InDelta(t, 3.281*0.3048, after.Result, 1e-12)
	assert.NotEqual(t, 1.0, after.Result)
}

func TestSessionSwapScientificOutput(t *testing.T) {
	s := newLengthSession(t)
	require.NoError(t, s.SetFromUnit("kilometer"))
	require.NoError(t, s.SetToUnit("millimeter"))
	s.SetInput("5000")
	require.Equal(t, "5.00e+9", s.State().Output)

	s.Swap()
	assert.Equal(t, "5.00e+9", s.State().Input)
	assert.Equal(t, "5000", s.State().Output)
}

func TestSessionSetCategory(t *testing.T) {
	s := newLengthSession(t)
	s.SetInput("100")
	require.NoError(t, s.SetCategory("temperature"))

	st := s.State()
	assert.Equal(t, "celsius", st.FromUnit)
	assert.Equal(t, "fahrenheit", st.ToUnit)
	assert.Equal(t, "100", st.Input)
	assert.Equal(t, "212", st.Output)

	assert.ErrorIs(t, s.SetCategory("luminosity"), ErrUnknownCategory)
	assert.Equal(t, "temperature", s.State().Category)
}

func TestSessionSetCatalog(t *testing.T) {
	s, err := NewSession(DefaultCatalog(), "currency")
	require.NoError(t, err)
	s.SetInput("1")
	assert.Equal(t, "0.001", s.State().Output)
	require.NoError(t, s.SetFromUnit("usd"))
	require.NoError(t, s.SetToUnit("krw"))
	assert.Equal(t, "1300", s.State().Output)

	cur, err := DefaultCatalog().Category("currency")
	require.NoError(t, err)
	cur.Units[1].ToBase = 1350
	next, err := DefaultCatalog().With(cur)
	require.NoError(t, err)

	require.NoError(t, s.SetCatalog(next))
	assert.Equal(t, "usd", s.State().FromUnit)
	assert.Equal(t, "1350", s.State().Output)
	assert.Same(t, next, s.Catalog())

	other, err := NewCatalog(Linear("ratio", "비율", Unit{Key: "one", ToBase: 1}))
	require.NoError(t, err)
	assert.ErrorIs(t, s.SetCatalog(other), ErrUnknownCategory)
	assert.Same(t, next, s.Catalog())
}

func TestSessionPendingText(t *testing.T) {
	pending := true
	var seen []string
	s := newLengthSession(t, WithPending("length", "loading", func() bool { return pending }),
		WithHook(func(st State) { seen = append(seen, st.ResultText) }))

	s.SetInput("1")
	assert.Equal(t, "0.001", s.State().Output)
	assert.Equal(t, "loading", s.State().ResultText)

	pending = false
	require.NoError(t, s.SetCatalog(DefaultCatalog()))
	assert.Equal(t, "1 미터 (m) = 0.001 킬로미터 (km)", s.State().ResultText)
	assert.Equal(t, []string{"loading", "loading", "1 미터 (m) = 0.001 킬로미터 (km)"}, seen)

	pending = true
	require.NoError(t, s.SetCategory("weight"))
	assert.NotEqual(t, "loading", s.State().ResultText, "other categories are not held back")
}

func TestSessionHooksAndMetrics(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	var seen []State
	s := newLengthSession(t, WithMetrics(m), WithHook(func(st State) {
		seen = append(seen, st)
	}))
	s.SetInput("2")
	s.SetInput("x")
	s.Swap()

	require.Len(t, seen, 4)
	assert.Equal(t, "2", seen[1].Input)
	assert.Equal(t, "0", seen[2].Output)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Conversions.WithLabelValues("length", ResultInvalidInput)))
	// initial "" and "x" are invalid, "2" and the swapped "0" are fine
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Conversions.WithLabelValues("length", ResultOK)))
}

func TestMetricsRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics()
	require.NoError(t, first.Register(reg))
	second := NewMetrics()
	require.NoError(t, second.Register(reg))

	second.RecordRateLoad("live")
	assert.Equal(t, 1.0, testutil.ToFloat64(first.RateLoads.WithLabelValues("live")))

	var none *Metrics
	assert.NotPanics(t, func() { none.RecordConversion("length", ResultOK) })
}
