package geometry

// Reference drawing constants.
const (
	ReferenceSideLength = 103.0
	ReferenceDiameter   = 68.0
	ReferenceCenterX    = 63.0
	ReferenceCenterY    = 62.5
)

// Transform positions the reference drawing for a target circle.
type Transform struct {
	ScaleFactor  float64
	ScaledLength float64
	DrawX        float64
	DrawY        float64
	DrawEndX     float64
	DrawEndY     float64
}

// ComputeTransform scales the reference drawing so its circle has
// targetDiameter and is centred on (targetCenterX, targetCenterY).
func ComputeTransform(targetDiameter, targetCenterX, targetCenterY float64) Transform {
	scale := targetDiameter / ReferenceDiameter
	length := ReferenceSideLength * scale
	drawX := targetCenterX - ReferenceCenterX*scale
	drawY := targetCenterY - ReferenceCenterY*scale

	return Transform{
		ScaleFactor:  scale,
		ScaledLength: length,
		DrawX:        drawX,
		DrawY:        drawY,
		DrawEndX:     drawX + length,
		DrawEndY:     drawY + length,
	}
}
