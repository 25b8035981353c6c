// Package chart builds Chart.js configurations for the scanboard dashboard.
//
// A [Builder] turns caller-supplied labels and values into a declarative
// [Config] ({type, data, options}) and binds it to a canvas on a
// [Document]. The package never draws anything itself: the browser passes
// each bound configuration to Chart.js, and the server-side PNG renderer
// consumes the same [Config] value.
//
// Three chart kinds are supported:
//
//   - [Builder.SingleSeries]: a line chart with one dataset
//   - [Builder.DualSeries]: a line chart with two datasets
//   - [Builder.DualSliceDoughnut]: a doughnut with two slices
//
// Colors come from a [ThemeProvider], which resolves CSS custom properties
// such as --line1 or --primary at the time each chart is built. Font sizes
// and the title color come from [Settings], passed explicitly to the
// builder rather than held in process-wide state.
//
// Example:
//
//	page := chart.NewPage("open-ports")
//	b := chart.NewBuilder(stylesheet, page)
//	c, err := b.SingleSeries(chart.SingleSeries{
//	    Labels:   []string{"Jan", "Feb"},
//	    Values:   []float64{1, 2},
//	    CanvasID: "open-ports",
//	})
package chart
