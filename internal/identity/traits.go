package identity

import "math"

// Proportions holds normalized facial proportion measurements derived from a
// landmark set. Zero values mean the source set was too short to measure.
type Proportions struct {
	EyeWidth        float64
	EyeSpacing      float64
	EyeAspectRatio  float64
	NoseLength      float64
	NoseWidth       float64
	NoseAspectRatio float64
	JawWidth        float64
	FaceAspectRatio float64
	MouthWidth      float64
}

func distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AnalyzeProportions measures facial proportions from a landmark set.
// Measurements whose points are missing are left at zero; a short or empty
// set never errors.
func AnalyzeProportions(l LandmarkSet) Proportions {
	var p Proportions
	if l.IsEmpty() || l.Width <= 0 || l.Height <= 0 {
		return p
	}

	w := float64(l.Width)
	h := float64(l.Height)

	left := l.FeaturePoints(FeatureLeftEye)
	right := l.FeaturePoints(FeatureRightEye)
	if len(left) > 8 && len(right) > 8 {
		leftWidth := distance(left[0], left[8])
		rightWidth := distance(right[0], right[8])
		avgWidth := (leftWidth + rightWidth) / 2
		p.EyeWidth = avgWidth / w
		p.EyeSpacing = distance(left[0], right[0]) / w

		if len(left) > 5 && len(right) > 5 && avgWidth > 0 {
			leftHeight := distance(left[1], left[5])
			rightHeight := distance(right[1], right[5])
			p.EyeAspectRatio = ((leftHeight + rightHeight) / 2) / avgWidth
		}
	}

	nose := l.FeaturePoints(FeatureNose)
	if len(nose) > 6 {
		p.NoseLength = distance(nose[0], nose[6]) / h
	}
	if len(nose) > 15 {
		noseWidth := distance(nose[12], nose[15])
		p.NoseWidth = noseWidth / w
		if noseWidth > 0 {
			p.NoseAspectRatio = distance(nose[0], nose[6]) / noseWidth
		}
	}

	jaw := l.FeaturePoints(FeatureJaw)
	if len(jaw) > 1 {
		p.JawWidth = distance(jaw[0], jaw[len(jaw)-1]) / w
	}

	oval := l.FeaturePoints(FeatureFaceOval)
	if len(oval) > 10 {
		top, bottom := oval[0], oval[0]
		leftMost, rightMost := oval[0], oval[0]
		for _, pt := range oval {
			if pt.Y < top.Y {
				top = pt
			}
			if pt.Y > bottom.Y {
				bottom = pt
			}
			if pt.X < leftMost.X {
				leftMost = pt
			}
			if pt.X > rightMost.X {
				rightMost = pt
			}
		}
		faceWidth := distance(leftMost, rightMost)
		if faceWidth > 0 {
			p.FaceAspectRatio = distance(top, bottom) / faceWidth
		}
	}

	mouth := l.FeaturePoints(FeatureMouth)
	if len(mouth) > 6 {
		p.MouthWidth = distance(mouth[0], mouth[6]) / w
	}

	return p
}

// DescribeTraits turns measured proportions into human-readable trait
// phrases, most distinctive first, at most five.
func DescribeTraits(p Proportions) []string {
	var traits []string

	if p.EyeSpacing > 0 {
		switch {
		case p.EyeSpacing > 0.3:
			traits = append(traits, "wide-set eyes")
		case p.EyeSpacing < 0.25:
			traits = append(traits, "close-set eyes")
		default:
			traits = append(traits, "well-spaced eyes")
		}
	}

	if p.EyeAspectRatio > 0 {
		switch {
		case p.EyeAspectRatio > 0.4:
			traits = append(traits, "round eyes")
		case p.EyeAspectRatio < 0.3:
			traits = append(traits, "narrow eyes")
		default:
			traits = append(traits, "almond-shaped eyes")
		}
	}

	if p.NoseAspectRatio > 0 {
		switch {
		case p.NoseAspectRatio > 1.5:
			traits = append(traits, "long nose")
		case p.NoseAspectRatio < 1.0:
			traits = append(traits, "button nose")
		}
	}

	if p.NoseWidth > 0 {
		switch {
		case p.NoseWidth > 0.08:
			traits = append(traits, "wide nose")
		case p.NoseWidth < 0.06:
			traits = append(traits, "narrow nose")
		}
	}

	if p.JawWidth > 0 {
		switch {
		case p.JawWidth > 0.5:
			traits = append(traits, "strong jawline")
		case p.JawWidth < 0.4:
			traits = append(traits, "narrow jaw")
		default:
			traits = append(traits, "defined jawline")
		}
	}

	if p.FaceAspectRatio > 0 {
		switch {
		case p.FaceAspectRatio > 1.4:
			traits = append(traits, "oval face")
		case p.FaceAspectRatio < 1.2:
			traits = append(traits, "round face")
		}
	}

	if p.MouthWidth > 0 {
		switch {
		case p.MouthWidth > 0.12:
			traits = append(traits, "wide smile")
		case p.MouthWidth < 0.08:
			traits = append(traits, "narrow mouth")
		}
	}

	if len(traits) > 5 {
		traits = traits[:5]
	}
	return traits
}
