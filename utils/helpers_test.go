package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelboard/api/models"
)

func TestParseBucket(t *testing.T) {
	for in, want := range map[string]models.Bucket{
		"Day":     models.BucketDay,
		"week":    models.BucketWeek,
		" MONTH ": models.BucketMonth,
	} {
		got, ok := ParseBucket(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "Hour", "Quarter"} {
		_, ok := ParseBucket(in)
		assert.False(t, ok, in)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Transfer Created", "Transfer Funded"}, SplitList(" Transfer Created, ,Transfer Funded,"))
	assert.Empty(t, SplitList(""))
}

func TestParseDimensions(t *testing.T) {
	dims, err := ParseDimensions("region, Platform")
	require.NoError(t, err)
	assert.Equal(t, []models.Dimension{models.DimRegion, models.DimPlatform}, dims)

	dims, err = ParseDimensions("")
	require.NoError(t, err)
	assert.Empty(t, dims)

	_, err = ParseDimensions("region,currency")
	assert.ErrorContains(t, err, "currency")
}
