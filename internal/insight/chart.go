package insight

// Series palette, cycled by point index for pie/bar fills.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart produces the dashboard's chart payload for the answered spec.
func BuildChart(spec QuerySpec, points []ChartPoint) *ChartConfig {
	if len(points) == 0 {
		return nil
	}

	return &ChartConfig{
		Type:   spec.Chart,
		Title:  spec.Title,
		XLabel: dimensionLabel(spec.Dimension),
		YLabel: metricLabel(spec.Metric),
		Points: points,
		Colors: assignColors(len(points)),
	}
}

func assignColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
