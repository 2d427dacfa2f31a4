package model

import "fmt"

// ReorderByIDs returns items arranged in the order given by ids. ids must be a
// permutation of the current identifiers; entries are moved, never recreated.
func ReorderByIDs[T any](items []T, ids []string, id func(T) string) ([]T, error) {
	if len(ids) != len(items) {
		return nil, fmt.Errorf("%w: expected %d ids, got %d", ErrInvalid, len(items), len(ids))
	}
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[id(item)] = i
	}
	if len(index) != len(items) {
		return nil, fmt.Errorf("%w: section has duplicate ids", ErrInvalid)
	}
	out := make([]T, 0, len(items))
	used := make(map[string]struct{}, len(ids))
	for _, want := range ids {
		i, ok := index[want]
		if !ok {
			return nil, fmt.Errorf("%w: unknown id %q", ErrInvalid, want)
		}
		if _, dup := used[want]; dup {
			return nil, fmt.Errorf("%w: id %q listed twice", ErrInvalid, want)
		}
		used[want] = struct{}{}
		out = append(out, items[i])
	}
	return out, nil
}

// Move relocates the entry at from to position to, shifting the others.
func Move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, fmt.Errorf("%w: move %d->%d out of range", ErrInvalid, from, to)
	}
	out := append([]T(nil), items...)
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out, nil
}

// ReorderSection applies a client ordering to one of the ordered sections.
func (c *Content) ReorderSection(section string, ids []string) error {
	var err error
	switch section {
	case SectionExperience:
		c.Experience, err = reorderInto(c.Experience, ids, func(e Experience) string { return e.ID })
	case SectionEducation:
		c.Education, err = reorderInto(c.Education, ids, func(e Education) string { return e.ID })
	case SectionProjects:
		c.Projects, err = reorderInto(c.Projects, ids, func(e Project) string { return e.ID })
	case SectionCertificates:
		c.Certificates, err = reorderInto(c.Certificates, ids, func(e Certificate) string { return e.ID })
	case SectionActivities:
		c.Activities, err = reorderInto(c.Activities, ids, func(e Activity) string { return e.ID })
	case SectionSkills:
		c.SkillsWithProficiency, err = reorderInto(c.SkillsWithProficiency, ids, func(e SkillWithProficiency) string { return e.ID })
	default:
		return fmt.Errorf("%w: section %q cannot be reordered", ErrInvalid, section)
	}
	return err
}

// MoveEntry moves one entry of an ordered section from index from to index to.
func (c *Content) MoveEntry(section string, from, to int) error {
	ids, err := c.entryIDs(section)
	if err != nil {
		return err
	}
	moved, err := Move(ids, from, to)
	if err != nil {
		return err
	}
	return c.ReorderSection(section, moved)
}

func (c *Content) entryIDs(section string) ([]string, error) {
	switch section {
	case SectionExperience:
		return idsOf(c.Experience, func(e Experience) string { return e.ID }), nil
	case SectionEducation:
		return idsOf(c.Education, func(e Education) string { return e.ID }), nil
	case SectionProjects:
		return idsOf(c.Projects, func(e Project) string { return e.ID }), nil
	case SectionCertificates:
		return idsOf(c.Certificates, func(e Certificate) string { return e.ID }), nil
	case SectionActivities:
		return idsOf(c.Activities, func(e Activity) string { return e.ID }), nil
	case SectionSkills:
		return idsOf(c.SkillsWithProficiency, func(e SkillWithProficiency) string { return e.ID }), nil
	}
	return nil, fmt.Errorf("%w: section %q cannot be reordered", ErrInvalid, section)
}

func idsOf[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}

func reorderInto[T any](items []T, ids []string, id func(T) string) ([]T, error) {
	out, err := ReorderByIDs(items, ids, id)
	if err != nil {
		return items, err
	}
	return out, nil
}

// NormalizeSectionOrder drops unknown and repeated names from a section order.
func NormalizeSectionOrder(order []string) []string {
	seen := make(map[string]struct{}, len(order))
	out := make([]string, 0, len(order))
	for _, name := range order {
		if !IsSection(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
