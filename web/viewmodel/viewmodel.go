// Package viewmodel holds the data the web components render.
package viewmodel

// Board is a game drawn as a table. Every cell holds its CSS fill, empty
// cells have none.
type Board struct {
	ID    string
	Score int
	Fills [][]string
}
