package datatable

import "slices"

// SetSelected replaces the selection. Duplicate keys keep their first entry.
func (c *Controller[T]) SetSelected(items []T) {
	c.selected = nil
	c.selectedIdx = make(map[string]struct{}, len(items))
	for _, item := range items {
		c.add(item)
	}
}

// SelectAll selects exactly the records on the current page when checked,
// and clears the selection otherwise. Records on other pages are dropped.
func (c *Controller[T]) SelectAll(checked bool) {
	if !checked {
		c.ClearSelection()
		return
	}
	c.SetSelected(c.PageItems())
}

func (c *Controller[T]) SelectItem(item T, checked bool) {
	if checked {
		c.add(item)
		return
	}
	key := c.keyOf(item)
	if _, ok := c.selectedIdx[key]; !ok {
		return
	}
	delete(c.selectedIdx, key)
	idx := slices.IndexFunc(c.selected, func(s T) bool { return c.keyOf(s) == key })
	if idx >= 0 {
		c.selected = slices.Delete(c.selected, idx, idx+1)
	}
}

func (c *Controller[T]) ClearSelection() {
	c.selected = nil
	c.selectedIdx = map[string]struct{}{}
}

func (c *Controller[T]) add(item T) {
	key := c.keyOf(item)
	if _, ok := c.selectedIdx[key]; ok {
		return
	}
	c.selectedIdx[key] = struct{}{}
	c.selected = append(c.selected, item)
}

// Selected returns the selected records in selection order.
func (c *Controller[T]) Selected() []T {
	return slices.Clone(c.selected)
}

func (c *Controller[T]) SelectedKeys() []string {
	keys := make([]string, 0, len(c.selected))
	for _, item := range c.selected {
		keys = append(keys, c.keyOf(item))
	}
	return keys
}

func (c *Controller[T]) IsSelected(item T) bool {
	_, ok := c.selectedIdx[c.keyOf(item)]
	return ok
}

func (c *Controller[T]) SelectedCount() int {
	return len(c.selected)
}
