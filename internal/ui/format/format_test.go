package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelative(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		d    time.Duration
		want string
	}{
		{0, "zero"},
		{500 * time.Millisecond, "zero"},
		{5 * time.Second, "5s"},
		{3*time.Minute + 7*time.Second, "3m07s"},
		{3 * time.Minute, "3m00s"},
		{2*time.Hour + 5*time.Minute, "2h05m00s"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, "1d02h03m04s"},
		{48 * time.Hour, "2d00h00m00s"},
		{-90 * time.Second, "-1m30s"},
	} {
		assert.Equal(t, tt.want, Relative(tt.d), "Relative(%s)", tt.d)
	}
}

func TestDecimal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.500h", Decimal(90*time.Minute))
	assert.Equal(t, "0.000h", Decimal(0))
	assert.Equal(t, "1.500h", Duration(90*time.Minute, true))
	assert.Equal(t, "1h30m00s", Duration(90*time.Minute, false))
}

func TestTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NoTags, Tags(""))
	assert.Equal(t, "a b", Tags("a b"))
}
