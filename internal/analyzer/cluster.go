package analyzer

// MergeNearbyPoints groups sorted rows into clusters, where a row joins the
// current cluster if it lies within threshold rows of the cluster's last
// row, and returns the integer midpoint of each cluster.
func MergeNearbyPoints(points []int, threshold int) []int {
	if len(points) == 0 {
		return nil
	}

	merged := make([]int, 0, len(points))
	start, end := points[0], points[0]
	for _, y := range points[1:] {
		if y <= end+threshold {
			end = y
			continue
		}
		merged = append(merged, (start+end)/2)
		start, end = y, y
	}

	return append(merged, (start+end)/2)
}
