package rewards

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_AddDays(t *testing.T) {
	d := Date{2024, time.February, 28}
	assert.Equal(t, Date{2024, time.February, 29}, d.AddDays(1))
	assert.Equal(t, Date{2024, time.March, 1}, d.AddDays(2))
	assert.Equal(t, Date{2023, time.December, 31}, Date{2024, time.January, 1}.AddDays(-1))
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
		Z Date `json:"z"`
	}{D: Date{2026, time.March, 14}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2026-03-14","z":null}`, string(b))

	var back struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2026-03-14"}`), &back))
	assert.Equal(t, Date{2026, time.March, 14}, back.D)
}

func TestSystemClock_UsesZone(t *testing.T) {
	clock, err := NewSystemClock("Europe/Rome")
	require.NoError(t, err)
	loc, _ := time.LoadLocation("Europe/Rome")
	assert.Equal(t, DateOf(time.Now().In(loc)), clock.Today())

	_, err = NewSystemClock("Mars/Olympus")
	assert.Error(t, err)
}
