package pagination

// Offset converts a 1-indexed page and per-page limit into a SQL offset.
// Pages below 1 clamp to the first page.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// HasMore reports whether rows exist beyond the given page.
// The comparison is done in int64 so large page*limit products cannot overflow.
func HasMore(page, limit int, total int64) bool {
	return int64(page)*int64(limit) < total
}
