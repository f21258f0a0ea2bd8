package tetris

// Shape identifies one of the pieces in the catalog.
type Shape int

const (
	O     Shape = iota // 2x2 square.
	J                  // Three wide, corner on the left.
	L                  // Three wide, corner on the right.
	S                  // Three tall, offset down to the right.
	Z                  // Three tall, offset down to the left.
	I                  // Four tall.
	Gamma              // Three tall, arm on the top right.
	T                  // Three tall, nub on the right.
)

// Mask is the occupancy matrix of a piece's bounding box.
// Rows go top to bottom, columns left to right.
type Mask [][]bool

/*
.	O		J		L		S		Z		I		Gamma		T

.	0 1		0 1 2		0 1 2		0 1		0 1		0		0 1		0 1

0	O O		O X X		X X O		O X		X O		O		O O		O X

1	O O		O O O		O O O		O O		O O		O		O X		O O

2							X O		O X		O		O X		O X

3											O
*/
var catalog = [...]Mask{
	O: {
		{true, true},
		{true, true},
	},
	J: {
		{true, false, false},
		{true, true, true},
	},
	L: {
		{false, false, true},
		{true, true, true},
	},
	S: {
		{true, false},
		{true, true},
		{false, true},
	},
	Z: {
		{false, true},
		{true, true},
		{true, false},
	},
	I: {
		{true},
		{true},
		{true},
		{true},
	},
	Gamma: {
		{true, true},
		{true, false},
		{true, false},
	},
	T: {
		{true, false},
		{true, true},
		{true, false},
	},
}

var shapeNames = [...]string{O: "O", J: "J", L: "L", S: "S", Z: "Z", I: "I", Gamma: "Gamma", T: "T"}

// Shapes returns the number of shapes in the catalog.
func Shapes() int { return len(catalog) }

// Mask returns a copy of the shape's template. Templates are never handed out directly.
func (s Shape) Mask() Mask {
	if !s.valid() {
		return nil
	}
	return catalog[s].Clone()
}

func (s Shape) String() string {
	if !s.valid() {
		return "unknown"
	}
	return shapeNames[s]
}

// ParseShape returns the shape with the given name.
func ParseShape(name string) (Shape, bool) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), true
		}
	}
	return 0, false
}

func (s Shape) valid() bool { return s >= 0 && int(s) < len(catalog) }

// Clone returns a deep copy of the mask.
func (m Mask) Clone() Mask {
	if m == nil {
		return nil
	}
	c := make(Mask, len(m))
	for i := range m {
		c[i] = make([]bool, len(m[i]))
		copy(c[i], m[i])
	}
	return c
}

// Rotate returns the mask turned a quarter clockwise. A mask with R rows and
// C columns becomes one with C rows and R columns where
// rotated[c][R-1-r] = m[r][c].
func (m Mask) Rotate() Mask {
	rows := len(m)
	if rows == 0 {
		return Mask{}
	}
	rotated := make(Mask, len(m[0]))
	for c := range rotated {
		rotated[c] = make([]bool, rows)
	}
	for r, row := range m {
		for c, v := range row {
			rotated[c][rows-1-r] = v
		}
	}
	return rotated
}

// Equal reports whether both masks have the same dimensions and cells.
func (m Mask) Equal(o Mask) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(o[i]) {
			return false
		}
		for j := range m[i] {
			if m[i][j] != o[i][j] {
				return false
			}
		}
	}
	return true
}
