package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"systems-api/internal/catalog"
	"systems-api/internal/eddn"
)

// Journal event kinds the classifier understands.
const (
	KindFSDJump     = "FSDJump"
	KindCarrierJump = "CarrierJump"
	KindLocation    = "Location"
	KindScan        = "Scan"
)

var ErrMalformedEvent = errors.New("malformed event")

// Mutation is a catalog change derived from one event.
type Mutation interface {
	mutation()
}

type NewSystem struct {
	System catalog.StarSystem
}

func (NewSystem) mutation() {}

type NewStar struct {
	Star catalog.Star
}

func (NewStar) mutation() {}

type systemMessage struct {
	Timestamp     *time.Time      `json:"timestamp"`
	StarSystem    *string         `json:"StarSystem"`
	SystemAddress *int64          `json:"SystemAddress"`
	StarPos       []float64       `json:"StarPos"`
	SystemFaction json.RawMessage `json:"SystemFaction"`
}

type scanMessage struct {
	Timestamp             *time.Time      `json:"timestamp"`
	StarSystem            *string         `json:"StarSystem"`
	SystemAddress         *int64          `json:"SystemAddress"`
	BodyID                *int            `json:"BodyID"`
	BodyName              *string         `json:"BodyName"`
	AbsoluteMagnitude     *float64        `json:"AbsoluteMagnitude"`
	AgeMY                 *int64          `json:"Age_MY"`
	AxialTilt             *float64        `json:"AxialTilt"`
	DistanceFromArrivalLS *float64        `json:"DistanceFromArrivalLS"`
	Luminosity            *string         `json:"Luminosity"`
	Radius                *float64        `json:"Radius"`
	RotationPeriod        *float64        `json:"RotationPeriod"`
	StarType              *string         `json:"StarType"`
	StellarMass           *float64        `json:"StellarMass"`
	SurfaceTemperature    *float64        `json:"SurfaceTemperature"`
	Eccentricity          *float64        `json:"Eccentricity"`
	OrbitalInclination    *float64        `json:"OrbitalInclination"`
	OrbitalPeriod         *float64        `json:"OrbitalPeriod"`
	Periapsis             *float64        `json:"Periapsis"`
	SemiMajorAxis         *float64        `json:"SemiMajorAxis"`
	Subclass              *int            `json:"Subclass"`
	Parents               json.RawMessage `json:"Parents"`
	Rings                 json.RawMessage `json:"Rings"`
}

// Classify maps a decoded event to the catalog mutation it implies. Events
// that do not describe a system or a star yield a nil mutation and no error.
func Classify(ev *eddn.Event) (Mutation, error) {
	switch ev.Kind {
	case KindFSDJump, KindCarrierJump, KindLocation:
		return classifySystem(ev)
	case KindScan:
		return classifyScan(ev)
	default:
		return nil, nil
	}
}

func classifySystem(ev *eddn.Event) (Mutation, error) {
	var msg systemMessage
	if err := json.Unmarshal(ev.Message, &msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, ev.Kind, err)
	}

	var missing fields
	missing.check(msg.SystemAddress != nil, "SystemAddress")
	missing.check(msg.StarSystem != nil, "StarSystem")
	missing.check(msg.Timestamp != nil, "timestamp")
	missing.check(len(msg.StarPos) == 3, "StarPos")
	if err := missing.err(ev.Kind); err != nil {
		return nil, err
	}

	return NewSystem{System: catalog.StarSystem{
		ID64:               *msg.SystemAddress,
		Name:               *msg.StarSystem,
		Coords:             catalog.Coords{X: msg.StarPos[0], Y: msg.StarPos[1], Z: msg.StarPos[2]},
		ControllingFaction: msg.SystemFaction,
		LastUpdate:         *msg.Timestamp,
	}}, nil
}

func classifyScan(ev *eddn.Event) (Mutation, error) {
	var msg scanMessage
	if err := json.Unmarshal(ev.Message, &msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, ev.Kind, err)
	}

	// Planets and belt clusters carry no magnitude.
	if msg.AbsoluteMagnitude == nil {
		return nil, nil
	}

	var missing fields
	missing.check(msg.SystemAddress != nil, "SystemAddress")
	missing.check(msg.BodyID != nil, "BodyID")
	missing.check(msg.BodyName != nil, "BodyName")
	missing.check(msg.StarSystem != nil, "StarSystem")
	missing.check(msg.Timestamp != nil, "timestamp")
	missing.check(msg.AgeMY != nil, "Age_MY")
	missing.check(msg.AxialTilt != nil, "AxialTilt")
	missing.check(msg.DistanceFromArrivalLS != nil, "DistanceFromArrivalLS")
	missing.check(msg.Luminosity != nil, "Luminosity")
	missing.check(msg.Radius != nil, "Radius")
	missing.check(msg.RotationPeriod != nil, "RotationPeriod")
	missing.check(msg.StarType != nil, "StarType")
	missing.check(msg.StellarMass != nil, "StellarMass")
	missing.check(msg.SurfaceTemperature != nil, "SurfaceTemperature")
	if err := missing.err(ev.Kind); err != nil {
		return nil, err
	}

	star := catalog.Star{
		SystemID64:         *msg.SystemAddress,
		BodyID:             *msg.BodyID,
		Name:               *msg.BodyName,
		SystemName:         *msg.StarSystem,
		Age:                *msg.AgeMY,
		AxialTilt:          *msg.AxialTilt,
		DistanceToArrival:  *msg.DistanceFromArrivalLS,
		Luminosity:         *msg.Luminosity,
		SolarRadius:        *msg.Radius,
		RotationalPeriod:   *msg.RotationPeriod,
		Type:               *msg.StarType,
		SolarMasses:        *msg.StellarMass,
		SurfaceTemperature: *msg.SurfaceTemperature,
		LastUpdate:         *msg.Timestamp,
		StarOptional: catalog.StarOptional{
			OrbitalEccentricity: msg.Eccentricity,
			OrbitalInclination:  msg.OrbitalInclination,
			OrbitalPeriod:       msg.OrbitalPeriod,
			ArgOfPeriapsis:      msg.Periapsis,
			SemiMajorAxis:       msg.SemiMajorAxis,
			SubType:             msg.Subclass,
			Parents:             msg.Parents,
			Belts:               msg.Rings,
		},
	}
	if err := star.Derive(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, ev.Kind, err)
	}

	return NewStar{Star: star}, nil
}

// fields collects the names of required attributes an event lacks.
type fields []string

func (f *fields) check(present bool, name string) {
	if !present {
		*f = append(*f, name)
	}
}

func (f fields) err(kind string) error {
	if len(f) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s missing %s", ErrMalformedEvent, kind, strings.Join(f, ", "))
}
