// Package primitive defines the plant-model scene types: parametric
// primitives, the connections joining their faces, and facet groups.
// A scene is built once and read concurrently afterwards.
package primitive
