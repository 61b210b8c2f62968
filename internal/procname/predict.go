package procname

import (
	"fmt"

	"systems-api/internal/catalog"
)

const (
	sectorSize   = 1280.0
	minBoxelSize = 10.0
	lettersBase  = 26
)

// Prediction locates a procedural system inside its sector. Positions are
// relative to the sector's minimum corner; sector origins depend on the
// sector phoneme tables and are not resolved here.
type Prediction struct {
	Name           string         `json:"name"`
	Sector         string         `json:"sector"`
	MassCode       string         `json:"mass_code"`
	BoxelSize      float64        `json:"boxel_size"`
	BoxelIndex     [3]int         `json:"boxel_index"`
	RelativeCoords catalog.Coords `json:"relative_coords"`
	Uncertainty    float64        `json:"uncertainty"`
}

// PredictSystem computes the boxel of a procedural system name. The system
// lies somewhere inside that boxel; RelativeCoords is its centre and
// Uncertainty the distance from centre to face.
func (g *Grammar) PredictSystem(name string) (*Prediction, error) {
	v, ok := g.Classify(name).(Valid)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotProcedural, name)
	}

	code := int(v.Boxel.MassCode - 'a')
	perSide := int(sectorSize/minBoxelSize) >> code
	size := minBoxelSize * float64(int(1)<<code)

	// A sector holds perSide^3 boxels and N1 counts blocks of 26^3 of them.
	capacity := perSide * perSide * perSide
	if v.Boxel.N1 > capacity/(lettersBase*lettersBase*lettersBase) {
		return nil, fmt.Errorf("%w: boxel %s lies outside its sector", ErrNotProcedural, v.Boxel)
	}

	pos := int(v.Boxel.Letters[0]-'A') +
		int(v.Boxel.Letters[1]-'A')*lettersBase +
		int(v.Boxel.Letters[2]-'A')*lettersBase*lettersBase +
		v.Boxel.N1*lettersBase*lettersBase*lettersBase

	x := pos % perSide
	y := (pos / perSide) % perSide
	z := pos / (perSide * perSide)
	if pos < 0 || z >= perSide {
		return nil, fmt.Errorf("%w: boxel %s lies outside its sector", ErrNotProcedural, v.Boxel)
	}

	return &Prediction{
		Name:       v.Sector + " " + v.Boxel.String(),
		Sector:     v.Sector,
		MassCode:   string(v.Boxel.MassCode),
		BoxelSize:  size,
		BoxelIndex: [3]int{x, y, z},
		RelativeCoords: catalog.Coords{
			X: float64(x)*size + size/2,
			Y: float64(y)*size + size/2,
			Z: float64(z)*size + size/2,
		},
		Uncertainty: size / 2,
	}, nil
}
