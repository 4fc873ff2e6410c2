package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
	"github.com/bodega-pos/bodega/internal/shared"
)

func TestParsePeriod(t *testing.T) {
	p, err := shared.ParsePeriod("")
	require.NoError(t, err)
	require.Equal(t, shared.PeriodToday, p)

	p, err = shared.ParsePeriod("month")
	require.NoError(t, err)
	require.Equal(t, shared.PeriodMonth, p)

	_, err = shared.ParsePeriod("quarter")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPeriodWindows(t *testing.T) {
	now := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

	from, to, err := shared.PeriodToday.Window(now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, now, to)

	from, to, err = shared.PeriodWeek.Window(now)
	require.NoError(t, err)
	require.Equal(t, now.AddDate(0, 0, -7), from)
	require.Equal(t, now, to)

	from, to, err = shared.PeriodMonth.Window(now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, now, to)

	_, _, err = shared.Period("year").Window(now)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
