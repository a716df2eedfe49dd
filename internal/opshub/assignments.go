package opshub

import "strings"

// Workshop is one Ops Hub assignment row for a specific leader.
type Workshop struct {
	Site     string
	Day      string
	Time     string
	Lesson   string
	District string
}

// leaderColumns returns the column indexes of the Leader 1/2/3 headers.
func leaderColumns(header []string) []int {
	var cols []int
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case ColLeader1, ColLeader2, ColLeader3:
			cols = append(cols, i)
		}
	}
	return cols
}

// LeaderWorkshops finds all workshop assignments for a leader by scanning
// the Leader 1/2/3 columns case-insensitively.
func LeaderWorkshops(rows [][]string, leaderName string) []Workshop {
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		if h = strings.TrimSpace(h); h != "" {
			colIdx[h] = i
		}
	}
	cell := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	target := strings.ToLower(strings.TrimSpace(leaderName))
	leaderCols := leaderColumns(header)

	var workshops []Workshop
	for _, row := range rows[1:] {
		matched := false
		for _, c := range leaderCols {
			if c < len(row) && strings.ToLower(strings.TrimSpace(row[c])) == target {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		site := cell(row, ColSite)
		lesson := cell(row, ColLesson)
		if site == "" && lesson == "" {
			continue
		}
		timeStr := cell(row, ColStartTime)
		if end := cell(row, ColEndTime); end != "" && timeStr != "" {
			timeStr += "-" + end
		} else if end != "" {
			timeStr = end
		}
		workshops = append(workshops, Workshop{
			Site:     site,
			Day:      cell(row, ColDay),
			Time:     timeStr,
			Lesson:   lesson,
			District: cell(row, ColDistrict),
		})
	}
	return workshops
}

// CellRef is a zero-based (row, column) grid coordinate.
type CellRef struct {
	Row int64
	Col int64
}

// LeaderCells returns the grid coordinates of every Leader 1/2/3 cell
// containing the given leader name, for color sync on stage transitions.
func LeaderCells(rows [][]string, leaderName string) []CellRef {
	if len(rows) < 2 {
		return nil
	}
	target := strings.ToLower(strings.TrimSpace(leaderName))
	leaderCols := leaderColumns(rows[0])

	var cells []CellRef
	for r, row := range rows[1:] {
		for _, c := range leaderCols {
			if c < len(row) && strings.ToLower(strings.TrimSpace(row[c])) == target {
				cells = append(cells, CellRef{Row: int64(r + 1), Col: int64(c)})
			}
		}
	}
	return cells
}
