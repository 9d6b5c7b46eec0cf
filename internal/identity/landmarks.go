package identity

// Point is a single facial keypoint. Z is depth from the mesh model and may
// be zero for 2D landmark sources.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// LandmarkSet is an ordered sequence of facial keypoints. Order is the
// anatomical index order of the mesh model and is meaningful: feature groups
// are addressed by fixed indices into this sequence.
type LandmarkSet struct {
	Points []Point `json:"points"`
	Width  int     `json:"width"`  // source image width in pixels
	Height int     `json:"height"` // source image height in pixels
}

// Feature names a facial feature group addressable in a landmark set.
type Feature string

const (
	FeatureLeftEye   Feature = "left_eye"
	FeatureRightEye  Feature = "right_eye"
	FeatureEyes      Feature = "eyes"
	FeatureNose      Feature = "nose"
	FeatureMouth     Feature = "mouth"
	FeatureJaw       Feature = "jaw"
	FeatureEyebrows  Feature = "eyebrows"
	FeatureFaceOval  Feature = "face_oval"
)

// featureIndices maps each feature group to its mesh-model point indices.
// The table is fixed, not derived; landmark models can return fewer points
// than the table expects, so every lookup is bounds-checked.
var featureIndices = map[Feature][]int{
	FeatureLeftEye:  {33, 7, 163, 144, 145, 153, 154, 155, 133, 173, 157, 158, 159, 160, 161, 246},
	FeatureRightEye: {362, 382, 381, 380, 374, 373, 390, 249, 263, 466, 388, 387, 386, 385, 384, 398},
	FeatureNose:     {1, 2, 5, 4, 6, 19, 20, 94, 125, 141, 235, 236, 237, 238, 239, 240, 241, 242},
	FeatureMouth:    {61, 84, 17, 314, 405, 320, 307, 375, 321, 308, 324, 318},
	FeatureJaw:      {172, 136, 150, 149, 176, 148, 152, 377, 400, 378, 379, 365, 397, 288, 361, 323},
	FeatureEyebrows: {70, 63, 105, 66, 107, 55, 65, 52, 53, 46, 296, 334, 293, 300, 276, 283, 282, 295, 285},
	FeatureFaceOval: {10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288, 397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136, 172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109},
}

// EmphasisFeatures lists the feature groups the caricature module picks from.
var EmphasisFeatures = []Feature{FeatureEyes, FeatureNose, FeatureJaw}

// IsEmpty reports whether the set holds no points.
func (l LandmarkSet) IsEmpty() bool {
	return len(l.Points) == 0
}

// FeaturePoints returns the points of a feature group. Indices beyond the
// actual point count are skipped; the result may be shorter than the index
// table or empty. The compound "eyes" feature joins both eye groups.
func (l LandmarkSet) FeaturePoints(f Feature) []Point {
	if f == FeatureEyes {
		return append(l.FeaturePoints(FeatureLeftEye), l.FeaturePoints(FeatureRightEye)...)
	}

	indices, ok := featureIndices[f]
	if !ok {
		return nil
	}

	points := make([]Point, 0, len(indices))
	for _, idx := range indices {
		if idx < len(l.Points) {
			points = append(points, l.Points[idx])
		}
	}
	return points
}

// FeatureIndices returns the in-bounds indices of a feature group.
func (l LandmarkSet) FeatureIndices(f Feature) []int {
	if f == FeatureEyes {
		return append(l.FeatureIndices(FeatureLeftEye), l.FeatureIndices(FeatureRightEye)...)
	}

	indices, ok := featureIndices[f]
	if !ok {
		return nil
	}

	valid := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < len(l.Points) {
			valid = append(valid, idx)
		}
	}
	return valid
}

// Centroid returns the mean position of the given points.
// Returns the zero point for an empty slice.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	n := float64(len(points))
	return Point{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}
