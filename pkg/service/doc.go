// Package service runs chart computations and manages the chart archive.
package service
