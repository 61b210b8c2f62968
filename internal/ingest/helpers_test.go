package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"systems-api/internal/catalog"
	"systems-api/internal/eddn"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// memoryCatalog is an insert-if-absent store keyed by id64.
type memoryCatalog struct {
	mu      sync.Mutex
	systems map[int64]catalog.StarSystem
	stars   map[uint64]catalog.Star
	err     error
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		systems: make(map[int64]catalog.StarSystem),
		stars:   make(map[uint64]catalog.Star),
	}
}

func (m *memoryCatalog) InsertSystemIfAbsent(ctx context.Context, sys *catalog.StarSystem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.systems[sys.ID64]; ok {
		return false, nil
	}
	m.systems[sys.ID64] = *sys
	return true, nil
}

func (m *memoryCatalog) InsertStarIfAbsent(ctx context.Context, star *catalog.Star) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.stars[star.ID64]; ok {
		return false, nil
	}
	m.stars[star.ID64] = *star
	return true, nil
}

func (m *memoryCatalog) CountStars(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.stars)), nil
}

func (m *memoryCatalog) CountSystems(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.systems)), nil
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Notify(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

const fsdJump = `{
	"event": "FSDJump",
	"timestamp": "2024-03-01T12:00:00Z",
	"StarSystem": "Sol",
	"SystemAddress": 10477373803,
	"StarPos": [0.0, 0.0, 0.0],
	"SystemFaction": {"Name": "Mother Gaia"}
}`

const starScan = `{
	"event": "Scan",
	"timestamp": "2024-03-01T12:05:00Z",
	"StarSystem": "Sol",
	"SystemAddress": 10477373803,
	"BodyID": 0,
	"BodyName": "Sol",
	"AbsoluteMagnitude": 4.83,
	"Age_MY": 4600,
	"AxialTilt": 0.0,
	"DistanceFromArrivalLS": 0.0,
	"Luminosity": "V",
	"Radius": 695700000.0,
	"RotationPeriod": 2192832.0,
	"StarType": "G",
	"StellarMass": 1.0,
	"Subclass": 2,
	"SurfaceTemperature": 5778.0
}`

const planetScan = `{
	"event": "Scan",
	"timestamp": "2024-03-01T12:06:00Z",
	"StarSystem": "Sol",
	"SystemAddress": 10477373803,
	"BodyID": 3,
	"BodyName": "Earth",
	"PlanetClass": "Earthlike body"
}`

func event(t *testing.T, message string) *eddn.Event {
	t.Helper()
	var disc struct {
		Event string `json:"event"`
	}
	require.NoError(t, json.Unmarshal([]byte(message), &disc))
	return &eddn.Event{Kind: disc.Event, Message: json.RawMessage(message)}
}

// relayMessage wraps a journal message the way the relay ships it.
func relayMessage(t *testing.T, message string) []byte {
	t.Helper()
	payload := `{"$schemaRef": "https://eddn.edcd.io/schemas/journal/1", "header": {"softwareName": "test"}, "message": ` + message + `}`
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
