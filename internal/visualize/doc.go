// Package visualize summarizes and plots the original and processed data of
// a completed pipeline.
//
// Describe builds the descriptive statistics table printed to the terminal.
// Renderer writes PNG files with gonum/plot: histograms of the processed
// numeric columns, before/after scatter plots of consecutive numeric pairs
// and a correlation heatmap.
package visualize
