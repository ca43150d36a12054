package models

import (
	"slices"
	"sort"
)

// Items returns the series members ordered by display index.
func (c *Content) Items() []SeriesItem {
	items := slices.Clone(c.state.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Index < items[j].Index })
	return items
}

// ItemIDs returns member ids in display order.
func (c *Content) ItemIDs() []string {
	items := c.Items()
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

// SetItems replaces the members; the position in ids becomes the index.
func (c *Content) SetItems(ids []string) error {
	if err := validateUUIDs("items", ids); err != nil {
		return err
	}
	c.state.Items = indexItems(uniqueStrings(ids))
	return nil
}

// AddItems appends members that are not in the series yet.
func (c *Content) AddItems(ids []string) error {
	if err := validateUUIDs("items", ids); err != nil {
		return err
	}
	current := c.ItemIDs()
	for _, id := range ids {
		if !slices.Contains(current, id) {
			current = append(current, id)
		}
	}
	c.state.Items = indexItems(current)
	return nil
}

func (c *Content) RemoveItems(ids []string) {
	current := c.ItemIDs()
	kept := current[:0]
	for _, id := range current {
		if !slices.Contains(ids, id) {
			kept = append(kept, id)
		}
	}
	c.state.Items = indexItems(kept)
}

// ReorderItems requires ids to be a permutation of the current members.
func (c *Content) ReorderItems(ids []string) error {
	current := c.ItemIDs()
	if len(ids) != len(current) {
		return ErrSeriesItemsMismatch
	}
	for _, id := range ids {
		if !slices.Contains(current, id) {
			return ErrSeriesItemsMismatch
		}
	}
	unique := uniqueStrings(ids)
	if len(unique) != len(ids) {
		return ErrSeriesItemsMismatch
	}
	c.state.Items = indexItems(unique)
	return nil
}

func indexItems(ids []string) []SeriesItem {
	items := make([]SeriesItem, 0, len(ids))
	for i, id := range ids {
		items = append(items, SeriesItem{ID: id, Index: i})
	}
	return items
}
