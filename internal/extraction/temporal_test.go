package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-workers/internal/models"
)

func temporal(value string) models.RawEntityMention {
	return models.RawEntityMention{Type: "builtin.datetimeV2.datetime", ResolvedValue: value}
}

type ymdhm [5]int

func fields(d models.DateInfo) ymdhm {
	return ymdhm{d.Year, d.Month, d.Day, d.Hour, d.Minute}
}

func TestClassifyFragment(t *testing.T) {
	tests := []struct {
		value  string
		kind   models.FragmentKind
		usable bool
		want   ymdhm
	}{
		{"2018-02-02 13:00:00", models.FragmentComplete, true, ymdhm{2018, 2, 2, 13, 0}},
		{"2018-02-02T09:30", models.FragmentComplete, true, ymdhm{2018, 2, 2, 9, 30}},
		{"2018-02-02", models.FragmentDateOnly, true, ymdhm{2018, 2, 2, 0, 0}},
		{"13:00:00", models.FragmentTimeOnly, true, ymdhm{0, 0, 0, 13, 0}},
		{"07:45", models.FragmentTimeOnly, true, ymdhm{0, 0, 0, 7, 45}},
		{"XXXX-WXX-1", models.FragmentComplete, false, ymdhm{}},
		{"", models.FragmentComplete, false, ymdhm{}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			f := ClassifyFragment(temporal(tt.value), 3)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.usable, f.Usable)
			assert.Equal(t, 3, f.Order)
			assert.Equal(t, tt.want, ymdhm{f.Year, f.Month, f.Day, f.Hour, f.Minute})
		})
	}
}

func TestMergeTemporal_SingleComplete(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{temporal("2018-02-02 13:00:00")}, 2000)

	require.Len(t, res.Dates, 1)
	assert.Equal(t, ymdhm{2018, 2, 2, 13, 0}, fields(res.Dates[0]))
	require.NotNil(t, res.Dates[0].FullDate)
	assert.Equal(t, time.Date(2018, 2, 2, 13, 0, 0, 0, time.UTC), *res.Dates[0].FullDate)
	assert.False(t, res.DateRejected)
}

func TestMergeTemporal_Pairing(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{
		temporal("2018-02-02"),
		temporal("13:00:00"),
	}, 2000)

	require.Len(t, res.Dates, 1)
	assert.Equal(t, ymdhm{2018, 2, 2, 13, 0}, fields(res.Dates[0]))
	assert.False(t, res.DateRejected)
}

func TestMergeTemporal_TimeBeforeDateStillPairs(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{
		temporal("09:15"),
		temporal("2021-11-30"),
	}, 2000)

	require.Len(t, res.Dates, 1)
	assert.Equal(t, ymdhm{2021, 11, 30, 9, 15}, fields(res.Dates[0]))
	assert.False(t, res.DateRejected)
}

func TestMergeTemporal_SequentialPairing(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{
		temporal("2018-02-02"),
		temporal("13:00:00"),
		temporal("2018-03-04"),
		temporal("10:30:00"),
	}, 2000)

	require.Len(t, res.Dates, 2)
	assert.Equal(t, ymdhm{2018, 2, 2, 13, 0}, fields(res.Dates[0]))
	assert.Equal(t, ymdhm{2018, 3, 4, 10, 30}, fields(res.Dates[1]))
	assert.True(t, res.DateRejected)
}

func TestMergeTemporal_LeftoverOrdering(t *testing.T) {
	t.Run("date with two times", func(t *testing.T) {
		res := MergeTemporal([]models.RawEntityMention{
			temporal("2018-02-02"),
			temporal("13:00:00"),
			temporal("15:30:00"),
		}, DefaultMinYear)

		require.Len(t, res.Dates, 2)
		assert.Equal(t, ymdhm{2018, 2, 2, 13, 0}, fields(res.Dates[0]))
		assert.Equal(t, ymdhm{0, 0, 0, 15, 30}, fields(res.Dates[1]))
		require.NotNil(t, res.Dates[1].FullDate)
		assert.Equal(t, time.Date(1, 1, 1, 15, 30, 0, 0, time.UTC), *res.Dates[1].FullDate)
		assert.True(t, res.DateRejected)
	})

	t.Run("complete first then pair then leftover", func(t *testing.T) {
		res := MergeTemporal([]models.RawEntityMention{
			temporal("2019-05-06 08:00:00"),
			temporal("2018-02-02"),
			temporal("13:00:00"),
			temporal("15:30:00"),
		}, DefaultMinYear)

		require.Len(t, res.Dates, 3)
		assert.Equal(t, ymdhm{2019, 5, 6, 8, 0}, fields(res.Dates[0]))
		assert.Equal(t, ymdhm{2018, 2, 2, 13, 0}, fields(res.Dates[1]))
		assert.Equal(t, ymdhm{0, 0, 0, 15, 30}, fields(res.Dates[2]))
	})

	t.Run("complete emitted before earlier fragments", func(t *testing.T) {
		res := MergeTemporal([]models.RawEntityMention{
			temporal("2018-02-02"),
			temporal("2019-05-06 08:00:00"),
			temporal("2018-03-03"),
			temporal("13:00:00"),
		}, 2000)

		require.Len(t, res.Dates, 3)
		assert.Equal(t, ymdhm{2019, 5, 6, 8, 0}, fields(res.Dates[0]))
		assert.Equal(t, ymdhm{2018, 2, 2, 13, 0}, fields(res.Dates[1]))
		assert.Equal(t, ymdhm{2018, 3, 3, 0, 0}, fields(res.Dates[2]))
	})
}

func TestMergeTemporal_ThresholdRejection(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{temporal("1890-02-02")}, 2000)

	require.Len(t, res.Dates, 1)
	assert.Nil(t, res.Dates[0].FullDate)
	assert.Equal(t, ymdhm{}, fields(res.Dates[0]))
	assert.True(t, res.Dates[0].IsRejected())
	assert.True(t, res.DateRejected)
	assert.Equal(t, 0, res.PlausibleCount())
}

func TestMergeTemporal_RejectionKeepsPosition(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{
		temporal("1890-01-01 10:00:00"),
		temporal("2020-01-01 10:00:00"),
	}, 2000)

	require.Len(t, res.Dates, 2)
	assert.True(t, res.Dates[0].IsRejected())
	assert.False(t, res.Dates[1].IsRejected())
	assert.Equal(t, 1, res.PlausibleCount())
	assert.True(t, res.DateRejected)
}

func TestMergeTemporal_StandaloneTimeKeepsClock(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{temporal("13:00:00")}, DefaultMinYear)

	require.Len(t, res.Dates, 1)
	assert.False(t, res.Dates[0].IsRejected())
	assert.Equal(t, ymdhm{0, 0, 0, 13, 0}, fields(res.Dates[0]))
	// A time of day alone is not a hearing date.
	assert.False(t, res.Dates[0].HasCalendarDate())
	assert.Equal(t, 0, res.PlausibleCount())
	assert.True(t, res.DateRejected)
}

func TestMergeTemporal_YearThresholdStillAppliesToDates(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{
		temporal("1890-02-02"),
		temporal("13:00:00"),
		temporal("15:30:00"),
	}, DefaultMinYear)

	require.Len(t, res.Dates, 2)
	assert.True(t, res.Dates[0].IsRejected())
	assert.Equal(t, ymdhm{0, 0, 0, 0, 0}, fields(res.Dates[0]))
	assert.Equal(t, ymdhm{0, 0, 0, 15, 30}, fields(res.Dates[1]))
	assert.True(t, res.DateRejected)
}

func TestMergeTemporal_UnreadableValueIsRejectedEntry(t *testing.T) {
	res := MergeTemporal([]models.RawEntityMention{temporal("sometime next week")}, 2000)

	require.Len(t, res.Dates, 1)
	assert.True(t, res.Dates[0].IsRejected())
	assert.True(t, res.DateRejected)
}

func TestMergeTemporal_NoMentions(t *testing.T) {
	for _, in := range [][]models.RawEntityMention{nil, {}} {
		res := MergeTemporal(in, 2000)
		assert.NotNil(t, res.Dates)
		assert.Empty(t, res.Dates)
		assert.True(t, res.DateRejected)
	}
}

func TestMergeTemporal_DoesNotMutateInput(t *testing.T) {
	in := []models.RawEntityMention{temporal("2018-02-02"), temporal("13:00")}
	before := append([]models.RawEntityMention(nil), in...)

	MergeTemporal(in, 2000)
	assert.Equal(t, before, in)
}
