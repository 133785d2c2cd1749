package tui

// scrollState manages selection plus scroll offset for list dialogs.
// Selection wraps at both ends; the offset follows it.
type scrollState struct {
	selectedIndex int
	scrollOffset  int
	visibleCount  int
	totalItems    int
}

func newScrollState(visibleCount int) scrollState {
	return scrollState{visibleCount: visibleCount}
}

// SetTotal updates the item count, clamping selection and offset.
func (s *scrollState) SetTotal(total int) {
	s.totalItems = total
	if s.selectedIndex >= total && total > 0 {
		s.selectedIndex = total - 1
	}
	s.adjust()
}

// SelectPrev moves up, wrapping to the bottom.
func (s *scrollState) SelectPrev() {
	if s.totalItems == 0 {
		return
	}
	if s.selectedIndex == 0 {
		s.selectedIndex = s.totalItems - 1
		if s.totalItems > s.visibleCount {
			s.scrollOffset = s.totalItems - s.visibleCount
		}
		return
	}
	s.selectedIndex--
	if s.selectedIndex < s.scrollOffset {
		s.scrollOffset = s.selectedIndex
	}
}

// SelectNext moves down, wrapping to the top.
func (s *scrollState) SelectNext() {
	if s.totalItems == 0 {
		return
	}
	s.selectedIndex = (s.selectedIndex + 1) % s.totalItems
	if s.selectedIndex == 0 {
		s.scrollOffset = 0
	} else if s.selectedIndex >= s.scrollOffset+s.visibleCount {
		s.scrollOffset = s.selectedIndex - s.visibleCount + 1
	}
}

func (s *scrollState) HasMoreAbove() bool { return s.scrollOffset > 0 }

func (s *scrollState) HasMoreBelow() bool {
	return s.scrollOffset+s.visibleCount < s.totalItems
}

func (s *scrollState) adjust() {
	if s.totalItems == 0 {
		s.scrollOffset = 0
		return
	}
	if s.selectedIndex < s.scrollOffset {
		s.scrollOffset = s.selectedIndex
	} else if s.selectedIndex >= s.scrollOffset+s.visibleCount {
		s.scrollOffset = s.selectedIndex - s.visibleCount + 1
	}
	max := s.totalItems - s.visibleCount
	if max < 0 {
		max = 0
	}
	if s.scrollOffset > max {
		s.scrollOffset = max
	}
}
