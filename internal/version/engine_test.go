package version

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gandalf/internal/testutil"
)

// zone renders a minimal zone with one A record per host. It asks for the
// version twice to check that a pass sees a single token.
func zone(renders *int, hosts ...string) RenderFunc {
	return func(rc *RenderContext) (string, error) {
		if renders != nil {
			*renders++
		}
		tok, err := rc.ResolveVersion()
		if err != nil {
			return "", err
		}
		again, err := rc.ResolveVersion()
		if err != nil {
			return "", err
		}
		if tok != again {
			return "", fmt.Errorf("token changed within a pass: %s then %s", tok, again)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "$TTL 3600\n@ IN SOA ns1.example.com. hostmaster.example.com. (\n\t%s ; serial\n\t3600 900 604800 300 )\n", tok)
		for _, h := range hosts {
			fmt.Fprintf(&b, "%s IN A 10.0.0.1\n", h)
		}
		fmt.Fprintf(&b, "; generated with serial %s\n", again)
		return b.String(), nil
	}
}

func previousOf(t *testing.T, tok Token, hosts ...string) Previous {
	t.Helper()
	text, err := zone(nil, hosts...)(FixedContext(tok))
	require.NoError(t, err)
	return Previous{Text: text, Present: true}
}

func newTestEngine(clock Clock, opts ...Option) *Engine {
	return NewEngine(append([]Option{WithClock(clock)}, opts...)...)
}

func TestEngine_UnchangedKeepsPreviousSerial(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1))
	prev := previousOf(t, 2024010100, "a")

	renders := 0
	res, err := e.Render(context.Background(), "dns/example.zone", zone(&renders, "a"), prev)
	require.NoError(t, err)

	assert.Equal(t, Unchanged, res.Outcome)
	assert.Equal(t, Token(2024010100), res.Token)
	require.NotNil(t, res.Previous)
	assert.Equal(t, Token(2024010100), *res.Previous)
	assert.Equal(t, prev.Text, res.Text, "final bytes equal the provisional render")
	assert.Equal(t, 1, renders)
}

func TestEngine_ChangedBumpsSerial(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1))
	prev := previousOf(t, 2024010100, "a")

	renders := 0
	res, err := e.Render(context.Background(), "dns/example.zone", zone(&renders, "a", "b"), prev)
	require.NoError(t, err)

	assert.Equal(t, Changed, res.Outcome)
	assert.Equal(t, Token(2024010101), res.Token)
	assert.Greater(t, res.Token, *res.Previous)
	assert.Contains(t, res.Text, "2024010101 ; serial")
	assert.Contains(t, res.Text, "; generated with serial 2024010101")
	assert.NotContains(t, res.Text, "2024010100", "final text embeds the new token only")
	assert.Equal(t, 2, renders)
}

func TestEngine_NoPreviousMintsToday(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.March, 15))

	renders := 0
	res, err := e.Render(context.Background(), "dns/example.zone", zone(&renders, "a"), Absent)
	require.NoError(t, err)

	assert.Equal(t, Initial, res.Outcome)
	assert.Equal(t, Token(2024031500), res.Token)
	assert.Nil(t, res.Previous)
	assert.Contains(t, res.Text, "2024031500 ; serial")
	assert.Equal(t, 1, renders)
}

func TestEngine_NoPreviousDependsOnlyOnToday(t *testing.T) {
	clock := testutil.Day(2024, time.January, 1)
	e := newTestEngine(clock)

	first, err := e.Render(context.Background(), "a.zone", zone(nil, "a"), Absent)
	require.NoError(t, err)
	second, err := e.Render(context.Background(), "a.zone", zone(nil, "a"), Absent)
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, first.Text, second.Text)

	clock.Advance(24 * time.Hour)
	third, err := e.Render(context.Background(), "a.zone", zone(nil, "a"), Absent)
	require.NoError(t, err)
	assert.Equal(t, Token(2024010200), third.Token)
}

func TestEngine_ChangedOnLaterDayResetsSequence(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 2))
	prev := previousOf(t, 2024010105, "a")

	res, err := e.Render(context.Background(), "dns/example.zone", zone(nil, "a", "b"), prev)
	require.NoError(t, err)
	assert.Equal(t, Changed, res.Outcome)
	assert.Equal(t, Token(2024010200), res.Token)
}

func TestEngine_UnchangedOnLaterDayKeepsSerial(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.June, 1))
	prev := previousOf(t, 2024010105, "a")

	res, err := e.Render(context.Background(), "dns/example.zone", zone(nil, "a"), prev)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Equal(t, Token(2024010105), res.Token)
}

func TestEngine_WhitespaceNoiseIsUnchanged(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1))
	prev := previousOf(t, 2024010100, "a")
	prev.Text = strings.ReplaceAll(prev.Text, "\n", "  \r\n") + "\r\n\r\n"

	res, err := e.Render(context.Background(), "dns/example.zone", zone(nil, "a"), prev)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
}

func TestEngine_PreviousWithoutSerialIsAbsent(t *testing.T) {
	logger, buf := captureLogger()
	e := newTestEngine(testutil.Day(2024, time.January, 1), WithLogger(logger))
	prev := Previous{Text: "not a zone file\n", Present: true}

	res, err := e.Render(context.Background(), "dns/example.zone", zone(nil, "a"), prev)
	require.NoError(t, err)
	assert.Equal(t, Initial, res.Outcome)
	assert.Equal(t, Token(2024010100), res.Token)
	assert.Contains(t, buf.String(), "no serial found")
}

func TestEngine_Overflow(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1))
	prev := previousOf(t, 2024010199, "a")

	_, err := e.Render(context.Background(), "dns/example.zone", zone(nil, "a", "b"), prev)
	require.Error(t, err)
	assert.True(t, IsOverflow(err))

	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dns/example.zone", ve.Path)
}

func TestEngine_OverflowOnlyWhenChanged(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1))
	prev := previousOf(t, 2024010199, "a")

	res, err := e.Render(context.Background(), "dns/example.zone", zone(nil, "a"), prev)
	require.NoError(t, err)
	assert.Equal(t, Token(2024010199), res.Token)
}

func TestEngine_InitialOverflowThroughTemplate(t *testing.T) {
	e := newTestEngine(testutil.Day(5000, time.January, 1))

	_, err := e.Render(context.Background(), "dns/example.zone", zone(nil, "a"), Absent)
	require.Error(t, err)
	assert.True(t, IsOverflow(err))
	assert.False(t, IsRenderFailure(err))
}

func TestEngine_RenderFailure(t *testing.T) {
	boom := errors.New("template exploded")
	failing := func(*RenderContext) (string, error) { return "", boom }
	e := newTestEngine(testutil.Day(2024, time.January, 1))

	for name, prev := range map[string]Previous{
		"initial":     Absent,
		"provisional": previousOf(t, 2024010100, "a"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.Render(context.Background(), "dns/example.zone", failing, prev)
			require.Error(t, err)
			assert.True(t, IsRenderFailure(err))
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), name+" render failed")
		})
	}
}

func TestEngine_FinalRenderFailure(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1))
	prev := previousOf(t, 2024010100, "a")

	calls := 0
	flaky := func(rc *RenderContext) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("second pass failed")
		}
		return zone(nil, "a", "b")(rc)
	}

	_, err := e.Render(context.Background(), "dns/example.zone", flaky, prev)
	require.Error(t, err)
	assert.True(t, IsRenderFailure(err))
	assert.Contains(t, err.Error(), "final render failed")
}

func TestEngine_CounterMinter(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1), WithMinter(Counter{}))

	res, err := e.Render(context.Background(), "a.zone", zone(nil, "a"), Absent)
	require.NoError(t, err)
	assert.Equal(t, Token(1), res.Token)

	prev := Previous{Text: res.Text, Present: true}
	res, err = e.Render(context.Background(), "a.zone", zone(nil, "a", "b"), prev)
	require.NoError(t, err)
	assert.Equal(t, Token(2), res.Token)
}

func TestEngine_CancelledBeforeFinalRender(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1))
	prev := previousOf(t, 2024010100, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Render(ctx, "dns/example.zone", zone(nil, "a", "b"), prev)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_InitialContext(t *testing.T) {
	e := newTestEngine(testutil.Day(2024, time.January, 1))

	tok, err := e.InitialContext().ResolveVersion()
	require.NoError(t, err)
	assert.Equal(t, Token(2024010100), tok)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "initial", Initial.String())
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "changed", Changed.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
