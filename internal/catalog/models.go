package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Coords is a galactic position in light years, stored as a JSON object.
type Coords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (c Coords) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Coords) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = Coords{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Coords", src)
	}
}

type StarSystem struct {
	ID64               int64           `json:"id64"`
	Name               string          `json:"name"`
	Coords             Coords          `json:"coords"`
	ControllingFaction json.RawMessage `json:"controlling_faction,omitempty"`
	LastUpdate         time.Time       `json:"last_update"`
}

// StarOptional holds the scan attributes that are not present on every
// event. A nil field means the attribute was absent and is stored as NULL.
type StarOptional struct {
	OrbitalEccentricity *float64
	OrbitalInclination  *float64
	OrbitalPeriod       *float64
	ArgOfPeriapsis      *float64
	SemiMajorAxis       *float64
	SubType             *int
	Parents             json.RawMessage
	Belts               json.RawMessage
}

type Star struct {
	ID64               uint64
	SystemID64         int64
	BodyID             int
	Name               string
	SystemName         string
	Age                int64
	AxialTilt          float64
	DistanceToArrival  float64
	Luminosity         string
	SolarRadius        float64
	RotationalPeriod   float64
	Type               string
	SolarMasses        float64
	SurfaceTemperature float64
	IsScoopable        bool
	IsMainStar         bool
	LastUpdate         time.Time
	StarOptional
}

var scoopableClasses = map[string]bool{
	"K": true, "G": true, "B": true, "F": true, "O": true, "A": true, "M": true,
}

// IsScoopableClass reports whether a star of the given stellar class can be
// fuel scooped.
func IsScoopableClass(starType string) bool {
	return scoopableClasses[starType]
}

// Derive fills the computed attributes of s from its source fields.
func (s *Star) Derive() error {
	id, err := EncodeBodyID(s.SystemID64, s.BodyID)
	if err != nil {
		return err
	}
	s.ID64 = id
	s.IsScoopable = IsScoopableClass(s.Type)
	s.IsMainStar = s.BodyID == 1
	return nil
}
