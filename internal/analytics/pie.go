package analytics

import (
	"fmt"
	"math"
	"strconv"

	"smartspend/internal/core"
)

// PieSegment is one slice of the category chart. Angles are in degrees,
// starting at the positive x axis.
type PieSegment struct {
	Category   core.Category `json:"category"`
	StartAngle float64       `json:"startAngle"`
	EndAngle   float64       `json:"endAngle"`
	Color      string        `json:"color"`
	Path       string        `json:"path"`
}

// PieSegments lays the category totals out as consecutive SVG arc paths in
// a circle of the given radius centred at (radius, radius).
func PieSegments(totals []CategoryTotal, radius float64) []PieSegment {
	segments := make([]PieSegment, 0, len(totals))
	start := 0.0
	for _, ct := range totals {
		angle := ct.Percentage / 100 * 360
		end := start + angle

		x1, y1 := arcPoint(radius, start)
		x2, y2 := arcPoint(radius, end)
		largeArc := 0
		if angle > 180 {
			largeArc = 1
		}
		r := num(radius)
		path := fmt.Sprintf("M %s,%s L %s,%s A %s,%s 0 %d,1 %s,%s Z",
			r, r, num(x1), num(y1), r, r, largeArc, num(x2), num(y2))

		segments = append(segments, PieSegment{
			Category:   ct.Category,
			StartAngle: start,
			EndAngle:   end,
			Color:      ct.Category.Color(),
			Path:       path,
		})
		start = end
	}
	return segments
}

func arcPoint(radius, degrees float64) (float64, float64) {
	rad := degrees * math.Pi / 180
	return radius + radius*math.Cos(rad), radius + radius*math.Sin(rad)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
