package ingest

import (
	"strings"
	"testing"
	"time"

	"systems-api/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySystemEntered(t *testing.T) {
	m, err := Classify(event(t, fsdJump))
	require.NoError(t, err)

	sys, ok := m.(NewSystem)
	require.True(t, ok, "got %T", m)
	assert.Equal(t, int64(10477373803), sys.System.ID64)
	assert.Equal(t, "Sol", sys.System.Name)
	assert.Equal(t, catalog.Coords{}, sys.System.Coords)
	assert.JSONEq(t, `{"Name": "Mother Gaia"}`, string(sys.System.ControllingFaction))
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), sys.System.LastUpdate)
}

func TestClassifyCarrierJumpAndLocation(t *testing.T) {
	for _, kind := range []string{KindCarrierJump, KindLocation} {
		msg := strings.Replace(fsdJump, `"FSDJump"`, `"`+kind+`"`, 1)
		m, err := Classify(event(t, msg))
		require.NoError(t, err, kind)
		assert.IsType(t, NewSystem{}, m, kind)
	}
}

func TestClassifyStarScan(t *testing.T) {
	m, err := Classify(event(t, starScan))
	require.NoError(t, err)

	ns, ok := m.(NewStar)
	require.True(t, ok, "got %T", m)
	star := ns.Star

	sys, body := catalog.DecodeBodyID(star.ID64)
	assert.Equal(t, int64(10477373803), sys)
	assert.Equal(t, 0, body)
	assert.Equal(t, "Sol", star.Name)
	assert.Equal(t, "G", star.Type)
	assert.Equal(t, int64(4600), star.Age)
	assert.True(t, star.IsScoopable)
	assert.False(t, star.IsMainStar)
	require.NotNil(t, star.SubType)
	assert.Equal(t, 2, *star.SubType)

	// Absent optional attributes stay empty.
	assert.Nil(t, star.OrbitalEccentricity)
	assert.Nil(t, star.OrbitalPeriod)
	assert.Nil(t, star.SemiMajorAxis)
	assert.Empty(t, star.Parents)
	assert.Empty(t, star.Belts)
}

func TestClassifyStarDerivedFields(t *testing.T) {
	msg := strings.Replace(starScan, `"BodyID": 0`, `"BodyID": 1`, 1)
	msg = strings.Replace(msg, `"StarType": "G"`, `"StarType": "L"`, 1)
	msg = strings.Replace(msg, `"Subclass": 2,`, `"Eccentricity": 0.2, "Parents": [{"Null": 0}],`, 1)

	m, err := Classify(event(t, msg))
	require.NoError(t, err)
	star := m.(NewStar).Star

	assert.True(t, star.IsMainStar)
	assert.False(t, star.IsScoopable)
	assert.Nil(t, star.SubType)
	require.NotNil(t, star.OrbitalEccentricity)
	assert.Equal(t, 0.2, *star.OrbitalEccentricity)
	assert.JSONEq(t, `[{"Null": 0}]`, string(star.Parents))
	assert.Equal(t, uint64(1), star.ID64>>catalog.BodyIDShift)
}

func TestClassifyIgnoresPlanetsAndOtherEvents(t *testing.T) {
	m, err := Classify(event(t, planetScan))
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = Classify(event(t, `{"event": "Docked", "StationName": "Abraham Lincoln"}`))
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestClassifyMalformed(t *testing.T) {
	msg := strings.Replace(fsdJump, `"SystemAddress": 10477373803,`, ``, 1)
	_, err := Classify(event(t, msg))
	require.ErrorIs(t, err, ErrMalformedEvent)
	assert.Contains(t, err.Error(), "SystemAddress")

	msg = strings.Replace(starScan, `"StellarMass": 1.0,`, ``, 1)
	_, err = Classify(event(t, msg))
	require.ErrorIs(t, err, ErrMalformedEvent)
	assert.Contains(t, err.Error(), "StellarMass")

	msg = strings.Replace(fsdJump, `"StarPos": [0.0, 0.0, 0.0]`, `"StarPos": [1.0]`, 1)
	_, err = Classify(event(t, msg))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	msg = strings.Replace(fsdJump, `"SystemAddress": 10477373803`, `"SystemAddress": "Sol"`, 1)
	_, err = Classify(event(t, msg))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}
