package model

// TaskPatch is a partial task update. Nil fields are left unchanged.
// ClearSortOrder and ClearDate set the column to null.
type TaskPatch struct {
	Title          *string   `json:"title,omitempty"`
	Type           *TaskType `json:"type,omitempty"`
	Memo           *string   `json:"memo,omitempty"`
	Links          *[]string `json:"links,omitempty"`
	IsCompleted    *bool     `json:"is_completed,omitempty"`
	SortOrder      *int      `json:"sort_order,omitempty"`
	ClearSortOrder bool      `json:"clear_sort_order,omitempty"`
	Date           *string   `json:"date,omitempty"`
	ClearDate      bool      `json:"clear_date,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Type == nil && p.Memo == nil && p.Links == nil &&
		p.IsCompleted == nil && p.SortOrder == nil && !p.ClearSortOrder &&
		p.Date == nil && !p.ClearDate
}

// Apply returns a copy of t with the patch applied
func (p TaskPatch) Apply(t Task) Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Memo != nil {
		out.Memo = *p.Memo
	}
	if p.Links != nil {
		out.Links = append([]string{}, (*p.Links)...)
	}
	if p.IsCompleted != nil {
		out.IsCompleted = *p.IsCompleted
	}
	if p.ClearSortOrder {
		out.SortOrder = nil
	}
	if p.SortOrder != nil {
		v := *p.SortOrder
		out.SortOrder = &v
	}
	if p.ClearDate {
		out.Date = ""
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	return out
}

// Merge combines two patches; fields set in next win
func (p TaskPatch) Merge(next TaskPatch) TaskPatch {
	out := p
	if next.Title != nil {
		out.Title = next.Title
	}
	if next.Type != nil {
		out.Type = next.Type
	}
	if next.Memo != nil {
		out.Memo = next.Memo
	}
	if next.Links != nil {
		out.Links = next.Links
	}
	if next.IsCompleted != nil {
		out.IsCompleted = next.IsCompleted
	}
	if next.SortOrder != nil {
		out.SortOrder = next.SortOrder
		out.ClearSortOrder = false
	} else if next.ClearSortOrder {
		out.SortOrder = nil
		out.ClearSortOrder = true
	}
	if next.Date != nil {
		out.Date = next.Date
		out.ClearDate = false
	} else if next.ClearDate {
		out.Date = nil
		out.ClearDate = true
	}
	return out
}

// SchedulePatch is a partial schedule update
type SchedulePatch struct {
	Date    *string `json:"date,omitempty"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p SchedulePatch) IsEmpty() bool {
	return p.Date == nil && p.Title == nil && p.Content == nil
}

// Apply returns a copy of s with the patch applied
func (p SchedulePatch) Apply(s Schedule) Schedule {
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Content != nil {
		s.Content = *p.Content
	}
	return s
}

// Merge combines two patches; fields set in next win
func (p SchedulePatch) Merge(next SchedulePatch) SchedulePatch {
	out := p
	if next.Date != nil {
		out.Date = next.Date
	}
	if next.Title != nil {
		out.Title = next.Title
	}
	if next.Content != nil {
		out.Content = next.Content
	}
	return out
}
