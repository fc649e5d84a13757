package model

import "math"

// MainZone splits the arena lengthwise into thirds.
type MainZone byte

const (
	NoMainZone MainZone = iota
	BlueZone            // third nearest the blue goal (negative Y)
	MidZone
	OrangeZone
)

// SubZone classifies the area a point sits in. Corners and boxes take
// precedence over sidelines, which take precedence over the open halves.
type SubZone byte

const (
	NoSubZone SubZone = iota
	TopCorner
	BottomCorner
	OrangeBox
	BlueBox
	TopSideline
	BottomSideline
	Top
	Bottom
)

func (s SubZone) IsCorner() bool { return s == TopCorner || s == BottomCorner }

type Zone struct {
	Main MainZone
	Sub  SubZone
}

// ZoneGrid is a coarse fixed grid over the arena floor. Each cell stores the
// SubZone of its center so lookups are a single index.
type ZoneGrid struct {
	Cols  int       // grid columns across X
	Rows  int       // grid rows along Y
	CellW float64   // arena units per column
	CellH float64   // arena units per row
	Grid  []SubZone // row-major: Grid[row*Cols + col]
}

// NewZoneGrid classifies every cell of a cols x rows grid.
func NewZoneGrid(cols, rows int) *ZoneGrid {
	g := &ZoneGrid{
		Cols:  cols,
		Rows:  rows,
		CellW: 2 * SideWall / float64(cols),
		CellH: 2 * BackWall / float64(rows),
		Grid:  make([]SubZone, cols*rows),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			g.Grid[row*cols+col] = classifySubZone(g.CellCenter(col, row))
		}
	}
	return g
}

// At returns the sub zone at grid coordinates (col, row).
// Returns NoSubZone for out-of-bounds coordinates.
func (g *ZoneGrid) At(col, row int) SubZone {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return NoSubZone
	}
	return g.Grid[row*g.Cols+col]
}

// AtPos converts an arena position to grid coordinates and returns the sub zone.
func (g *ZoneGrid) AtPos(p Vec2) SubZone {
	if g.CellW <= 0 || g.CellH <= 0 {
		return NoSubZone
	}
	col := int(math.Floor((p.X + SideWall) / g.CellW))
	row := int(math.Floor((p.Y + BackWall) / g.CellH))
	return g.At(col, row)
}

// CellCenter returns the arena position at the center of cell (col, row).
func (g *ZoneGrid) CellCenter(col, row int) Vec2 {
	return Vec2{
		X: -SideWall + (float64(col)+0.5)*g.CellW,
		Y: -BackWall + (float64(row)+0.5)*g.CellH,
	}
}

// ZoneOf combines the main zone with the grid's sub zone.
func (g *ZoneGrid) ZoneOf(p Vec3) Zone {
	return Zone{Main: mainZoneOf(p.Flatten()), Sub: g.AtPos(p.Flatten())}
}

func mainZoneOf(p Vec2) MainZone {
	switch {
	case math.Abs(p.X) > SideWall || math.Abs(p.Y) > BackWall:
		return NoMainZone
	case p.Y > BackWall/3:
		return OrangeZone
	case p.Y < -BackWall/3:
		return BlueZone
	default:
		return MidZone
	}
}

func classifySubZone(p Vec2) SubZone {
	ax, ay := math.Abs(p.X), math.Abs(p.Y)
	top := p.Y > 0
	switch {
	case ax > SideWall-30 && ay > BackWall-30:
		if top {
			return TopCorner
		}
		return BottomCorner
	case ax < GoalHalfWidth*2 && ay > BackWall-35:
		if top {
			return OrangeBox
		}
		return BlueBox
	case ax > SideWall-15:
		if top {
			return TopSideline
		}
		return BottomSideline
	case top:
		return Top
	default:
		return Bottom
	}
}

// ZonePlan is the zone reading for one tick.
type ZonePlan struct {
	TargetZone       Zone
	MyZone           Zone
	TargetInMyBox    bool
	TargetInRivalBox bool
}

// NewZonePlan reads the zones of the target and the controlled agent.
// Box flags stay false when either reading is off the grid.
func NewZonePlan(g *ZoneGrid, target Vec3, me AgentState) ZonePlan {
	zp := ZonePlan{TargetZone: g.ZoneOf(target), MyZone: g.ZoneOf(me.Position)}
	if zp.TargetZone.Main == NoMainZone || zp.MyZone.Main == NoMainZone {
		return zp
	}
	myBox, rivalBox := BlueBox, OrangeBox
	if me.Team == Orange {
		myBox, rivalBox = OrangeBox, BlueBox
	}
	zp.TargetInMyBox = zp.TargetZone.Sub == myBox
	zp.TargetInRivalBox = zp.TargetZone.Sub == rivalBox
	return zp
}

// OwnThird is the main zone nearest team's goal.
func OwnThird(team Team) MainZone {
	if team == Blue {
		return BlueZone
	}
	return OrangeZone
}
