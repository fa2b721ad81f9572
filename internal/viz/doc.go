// Package viz renders heat grids in the terminal.
//
//   - [Heatmap]: character heatmap of a grid, one glyph per cell
//   - [PlotHistory]: asciigraph chart of max/mean/min temperature per step
//   - [Model]: bubbletea program that steps a simulation on a timer
//
// The live view is the only caller in this repository that schedules
// steps; the simulation itself has no timer.
package viz
