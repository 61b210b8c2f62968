package permit

// Permit marks a system that needs a travel permit. Name is the permit's
// display name and may be unknown.
type Permit struct {
	ID64 int64
	Name *string
}

// Set answers permit lookups for one search request.
type Set struct {
	names map[int64]*string
}

func NewSet(permits []Permit) Set {
	names := make(map[int64]*string, len(permits))
	for _, p := range permits {
		names[p.ID64] = p.Name
	}
	return Set{names: names}
}

// Annotate reports whether id64 is permit locked and, if known, the name
// of the permit.
func (s Set) Annotate(id64 int64) (required bool, name *string) {
	name, required = s.names[id64]
	return required, name
}

func (s Set) Len() int {
	return len(s.names)
}
