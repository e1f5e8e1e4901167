package engine

// Curve evaluation shared by capacity, COP, and sizing-factor lookups so
// clamp and interpolation semantics stay identical everywhere.

// interpolateCurve evaluates a curve at x using linear interpolation
// between the two bracketing knots. Outside the knot domain the nearest
// end value is returned unchanged (no extrapolation).
func interpolateCurve(points []CurvePoint, x float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if x <= points[0].TempF {
		return points[0].Value
	}
	last := len(points) - 1
	if x >= points[last].TempF {
		return points[last].Value
	}
	for i := 0; i < last; i++ {
		p, q := points[i], points[i+1]
		if x >= p.TempF && x <= q.TempF {
			frac := (x - p.TempF) / (q.TempF - p.TempF)
			return p.Value + (q.Value-p.Value)*frac
		}
	}
	return points[last].Value
}

// curveCrossing finds the x at which the curve, scaled by scale, equals
// target. It searches segments for a sign change in (scale*value - target)
// and interpolates linearly within the crossing segment, so the result is
// exactly consistent with interpolateCurve. Returns false when no segment
// crosses the target within the knot domain.
func curveCrossing(points []CurvePoint, scale, target float64) (float64, bool) {
	if len(points) < 2 || scale == 0 {
		return 0, false
	}
	for i := 0; i < len(points)-1; i++ {
		p, q := points[i], points[i+1]
		dp := scale*p.Value - target
		dq := scale*q.Value - target
		if dp == 0 {
			return p.TempF, true
		}
		if dq == 0 {
			return q.TempF, true
		}
		if dp < 0 && dq > 0 || dp > 0 && dq < 0 {
			frac := (target/scale - p.Value) / (q.Value - p.Value)
			return p.TempF + (q.TempF-p.TempF)*frac, true
		}
	}
	return 0, false
}

// validateCurve checks a curve for the invariants enforced at load time:
// at least two knots, strictly increasing temperatures, and values within
// [minVal, maxVal].
func validateCurve(name string, points []CurvePoint, minVal, maxVal float64) error {
	if len(points) < 2 {
		return computationf("%s curve needs at least 2 points, got %d", name, len(points))
	}
	for i, p := range points {
		if i > 0 && p.TempF <= points[i-1].TempF {
			return computationf("%s curve not strictly increasing in temperature at point %d (%.1f after %.1f)",
				name, i, p.TempF, points[i-1].TempF)
		}
		if p.Value < minVal || p.Value > maxVal {
			return computationf("%s curve value %.3f at %.1f°F outside [%.2f, %.2f]",
				name, p.Value, p.TempF, minVal, maxVal)
		}
	}
	return nil
}
