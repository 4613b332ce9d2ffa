package grid

// Direction is one of the four sides of a cell.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// AllDirections lists the directions in their fixed priority order.
var AllDirections = [4]Direction{North, East, South, West}

// Opposite returns the direction facing d.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Mask returns d as a single-bit Directions set.
func (d Direction) Mask() Directions {
	return 1 << d
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "unknown"
}

// Directions is a bit set of directions. Bit 0 is North, bit 3 is West.
type Directions uint8

// Has reports whether d is in the set.
func (s Directions) Has(d Direction) bool {
	return s&d.Mask() != 0
}

// DirectionBetween returns the direction from a to b when they share an edge.
func DirectionBetween(a, b Position) (Direction, bool) {
	for _, d := range AllDirections {
		if a.Step(d) == b {
			return d, true
		}
	}
	return 0, false
}
