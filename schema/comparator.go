package schema

import (
	"slices"
	"strconv"
	"strings"
)

const (
	defaultStringLength = 255
	defaultPrecision    = 10
)

// CompareOption configures how Compare matches names.
type CompareOption func(*comparator)

// CaseSensitive matches table, column, index and foreign key names exactly,
// after stripping quotes. Dialects that keep the case of quoted identifiers
// need it, otherwise renaming Email to email yields an empty diff.
func CaseSensitive() CompareOption {
	return func(c *comparator) {
		c.key = Unquote
	}
}

type comparator struct {
	key func(string) string
}

func (c *comparator) same(a, b string) bool {
	return c.key(a) == c.key(b)
}

func (c *comparator) column(t *Table, name string) *Column {
	return lookup(t.Columns, name, c.key, func(col *Column) string { return col.Name })
}

func (c *comparator) index(t *Table, name string) *Index {
	return lookup(t.Indexes, name, c.key, func(idx *Index) string { return idx.Name })
}

func (c *comparator) foreignKey(t *Table, name string) *ForeignKey {
	return lookup(t.ForeignKeys, name, c.key, func(fk *ForeignKey) string { return fk.Name })
}

func lookup[T any](items []T, name string, key func(string) string, nameOf func(T) string) T {
	k := key(name)
	for _, item := range items {
		if key(nameOf(item)) == k {
			return item
		}
	}
	var zero T
	return zero
}

// Compare computes the diff that turns the old table snapshot into the new one.
// Names are matched ignoring case and quoting unless CaseSensitive is given.
func Compare(from, to *Table, opts ...CompareOption) *TableDiff {
	c := &comparator{key: normalize}
	for _, opt := range opts {
		opt(c)
	}

	diff := &TableDiff{
		Name:     from.QualifiedName(),
		OldTable: from,
	}

	if !c.same(from.Name, to.Name) {
		diff.NewName = to.Name
	}

	c.compareColumns(diff, from, to)
	c.detectColumnRenames(diff)
	c.compareIndexes(diff, from, to)
	c.detectIndexRenames(diff)
	c.compareForeignKeys(diff, from, to)

	return diff
}

func (c *comparator) compareColumns(diff *TableDiff, from, to *Table) {
	for _, newCol := range to.Columns {
		oldCol := c.column(from, newCol.Name)
		if oldCol == nil {
			diff.AddedColumns = append(diff.AddedColumns, newCol)
			continue
		}

		changed := ColumnChanges(oldCol, newCol)
		if len(changed) == 0 {
			continue
		}

		diff.ModifiedColumns = append(diff.ModifiedColumns, &ColumnDiff{
			OldColumnName:     oldCol.Name,
			OldColumn:         oldCol,
			NewColumn:         newCol,
			ChangedProperties: changed,
		})
	}

	for _, oldCol := range from.Columns {
		if c.column(to, oldCol.Name) == nil {
			diff.DroppedColumns = append(diff.DroppedColumns, oldCol)
		}
	}
}

// ColumnChanges lists the properties that differ between two column definitions.
// Names are not compared.
func ColumnChanges(prev, next *Column) []Property {
	var changed []Property

	if prev.Type != next.Type {
		changed = append(changed, PropertyType)
	}

	if next.Type.HasLength() || prev.Type.HasLength() {
		if effectiveLength(prev) != effectiveLength(next) {
			changed = append(changed, PropertyLength)
		}
		if prev.Fixed != next.Fixed {
			changed = append(changed, PropertyFixed)
		}
	}

	if next.Type == TypeDecimal || prev.Type == TypeDecimal {
		if effectivePrecision(prev) != effectivePrecision(next) {
			changed = append(changed, PropertyPrecision)
		}
		if prev.Scale != next.Scale {
			changed = append(changed, PropertyScale)
		}
	}

	if prev.NotNull != next.NotNull {
		changed = append(changed, PropertyNotNull)
	}

	if !defaultsMatch(prev, next) {
		changed = append(changed, PropertyDefault)
	}

	if prev.Autoincrement != next.Autoincrement {
		changed = append(changed, PropertyAutoincrement)
	}

	if prev.Comment != next.Comment {
		changed = append(changed, PropertyComment)
	}

	return changed
}

func effectiveLength(c *Column) int {
	if c.Length == 0 && c.Type == TypeString {
		return defaultStringLength
	}
	return c.Length
}

func effectivePrecision(c *Column) int {
	if c.Precision == 0 {
		return defaultPrecision
	}
	return c.Precision
}

// defaultsMatch compares default values the way the database stores them:
// boolean spellings (1, t, yes, on...) and integer formatting ("007") are
// normalized first, so a snapshot default of 1 equals an introspected true.
func defaultsMatch(prev, next *Column) bool {
	if prev.Default == nil || next.Default == nil {
		return prev.Default == nil && next.Default == nil
	}
	return normalizeDefault(prev, *prev.Default) == normalizeDefault(next, *next.Default)
}

func normalizeDefault(col *Column, value string) string {
	v := strings.TrimSpace(value)
	switch {
	case col.Type == TypeBoolean:
		switch strings.ToLower(strings.Trim(v, "'")) {
		case "1", "t", "true", "y", "yes", "on":
			return "true"
		case "0", "f", "false", "n", "no", "off":
			return "false"
		}
	case col.Type.IsInteger():
		if n, err := strconv.ParseInt(strings.Trim(v, "'"), 10, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
	}
	return value
}

// detectColumnRenames turns an added/dropped pair with identical definitions
// into a rename, provided the added column has exactly one candidate.
func (c *comparator) detectColumnRenames(diff *TableDiff) {
	type candidate struct {
		dropped *Column
		added   *Column
	}

	var pairs []candidate
	for _, added := range diff.AddedColumns {
		var found []candidate
		for _, dropped := range diff.DroppedColumns {
			if len(ColumnChanges(dropped, added)) == 0 {
				found = append(found, candidate{dropped: dropped, added: added})
			}
		}
		if len(found) == 1 {
			pairs = append(pairs, found[0])
		}
	}

	for _, p := range pairs {
		claimed := slices.ContainsFunc(diff.RenamedColumns, func(r RenamedColumn) bool {
			return c.same(r.OldName, p.dropped.Name)
		})
		if claimed {
			continue
		}

		diff.RenamedColumns = append(diff.RenamedColumns, RenamedColumn{OldName: p.dropped.Name, Column: p.added})
		diff.AddedColumns = slices.DeleteFunc(diff.AddedColumns, func(col *Column) bool { return col == p.added })
		diff.DroppedColumns = slices.DeleteFunc(diff.DroppedColumns, func(col *Column) bool { return col == p.dropped })
	}
}

func (c *comparator) compareIndexes(diff *TableDiff, from, to *Table) {
	for _, newIdx := range to.Indexes {
		oldIdx := c.index(from, newIdx.Name)
		if oldIdx == nil {
			diff.AddedIndexes = append(diff.AddedIndexes, newIdx)
			continue
		}
		if !c.sameIndex(oldIdx, newIdx) {
			diff.ModifiedIndexes = append(diff.ModifiedIndexes, newIdx)
		}
	}

	for _, oldIdx := range from.Indexes {
		if c.index(to, oldIdx.Name) == nil {
			diff.DroppedIndexes = append(diff.DroppedIndexes, oldIdx)
		}
	}
}

func (c *comparator) detectIndexRenames(diff *TableDiff) {
	for _, added := range slices.Clone(diff.AddedIndexes) {
		if added.Primary {
			continue
		}

		var match *Index
		count := 0
		for _, dropped := range diff.DroppedIndexes {
			if !dropped.Primary && c.sameIndex(dropped, added) {
				match = dropped
				count++
			}
		}
		if count != 1 {
			continue
		}

		diff.RenamedIndexes = append(diff.RenamedIndexes, RenamedIndex{OldName: match.Name, Index: added})
		diff.AddedIndexes = slices.DeleteFunc(diff.AddedIndexes, func(i *Index) bool { return i == added })
		diff.DroppedIndexes = slices.DeleteFunc(diff.DroppedIndexes, func(i *Index) bool { return i == match })
	}
}

func (c *comparator) sameIndex(a, b *Index) bool {
	return a.Unique == b.Unique && a.Primary == b.Primary && c.sameNames(a.Columns, b.Columns)
}

func (c *comparator) compareForeignKeys(diff *TableDiff, from, to *Table) {
	for _, newFK := range to.ForeignKeys {
		oldFK := c.foreignKey(from, newFK.Name)
		if oldFK == nil {
			diff.AddedForeignKeys = append(diff.AddedForeignKeys, newFK)
			continue
		}
		if !c.sameForeignKey(oldFK, newFK) {
			diff.ModifiedForeignKeys = append(diff.ModifiedForeignKeys, newFK)
		}
	}

	for _, oldFK := range from.ForeignKeys {
		if c.foreignKey(to, oldFK.Name) == nil {
			diff.DroppedForeignKeys = append(diff.DroppedForeignKeys, oldFK)
		}
	}
}

func (c *comparator) sameForeignKey(a, b *ForeignKey) bool {
	return c.same(a.ForeignTable, b.ForeignTable) &&
		c.sameNames(a.LocalColumns, b.LocalColumns) &&
		c.sameNames(a.ForeignColumns, b.ForeignColumns) &&
		strings.EqualFold(a.OnDelete, b.OnDelete) &&
		strings.EqualFold(a.OnUpdate, b.OnUpdate)
}

func (c *comparator) sameNames(a, b []string) bool {
	return slices.EqualFunc(a, b, c.same)
}
