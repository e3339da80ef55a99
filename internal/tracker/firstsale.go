package tracker

import "strings"

// HeaderIndex locates a column by header name, -1 when absent.
func HeaderIndex(headers []string, column string) int {
	for i, h := range headers {
		if strings.TrimSpace(h) == column {
			return i
		}
	}
	return -1
}

// IsFirstSale reports whether no row strictly before upToRow carries the
// same salesperson name. Row 0 is the header and never counts. Linear in
// the grid, which is fine: it runs once per newly detected row, not per
// poll.
func IsFirstSale(name string, grid [][]string, nameColIdx int, upToRow int) bool {
	if nameColIdx < 0 {
		return false
	}
	if upToRow > len(grid) {
		upToRow = len(grid)
	}
	for i := 1; i < upToRow; i++ {
		row := grid[i]
		if nameColIdx < len(row) && row[nameColIdx] == name {
			return false
		}
	}
	return true
}
