package schema

import "slices"

// Property names a column attribute that can change between two snapshots
type Property string

const (
	PropertyType          Property = "type"
	PropertyLength        Property = "length"
	PropertyPrecision     Property = "precision"
	PropertyScale         Property = "scale"
	PropertyFixed         Property = "fixed"
	PropertyDefault       Property = "default"
	PropertyNotNull       Property = "notnull"
	PropertyAutoincrement Property = "autoincrement"
	PropertyComment       Property = "comment"
)

// ColumnDiff describes how a single column changed
type ColumnDiff struct {
	OldColumnName string
	// OldColumn is nil when no snapshot of the previous column is available
	OldColumn         *Column
	NewColumn         *Column
	ChangedProperties []Property
}

// HasChanged reports whether the given property is listed as changed.
func (d *ColumnDiff) HasChanged(p Property) bool {
	return slices.Contains(d.ChangedProperties, p)
}

// OnlyChanged reports whether every changed property is one of allowed.
func (d *ColumnDiff) OnlyChanged(allowed ...Property) bool {
	for _, p := range d.ChangedProperties {
		if !slices.Contains(allowed, p) {
			return false
		}
	}
	return true
}

func (d *ColumnDiff) HasTypeChanged() bool          { return d.HasChanged(PropertyType) }
func (d *ColumnDiff) HasLengthChanged() bool        { return d.HasChanged(PropertyLength) }
func (d *ColumnDiff) HasPrecisionChanged() bool     { return d.HasChanged(PropertyPrecision) }
func (d *ColumnDiff) HasScaleChanged() bool         { return d.HasChanged(PropertyScale) }
func (d *ColumnDiff) HasFixedChanged() bool         { return d.HasChanged(PropertyFixed) }
func (d *ColumnDiff) HasDefaultChanged() bool       { return d.HasChanged(PropertyDefault) }
func (d *ColumnDiff) HasNotNullChanged() bool       { return d.HasChanged(PropertyNotNull) }
func (d *ColumnDiff) HasAutoincrementChanged() bool { return d.HasChanged(PropertyAutoincrement) }
func (d *ColumnDiff) HasCommentChanged() bool       { return d.HasChanged(PropertyComment) }

// OldName returns the quoted-or-bare name of the column before the change.
func (d *ColumnDiff) OldName() string {
	if d.OldColumn != nil {
		return d.OldColumn.Name
	}
	if d.OldColumnName != "" {
		return d.OldColumnName
	}
	return d.NewColumn.Name
}

// RenamedColumn pairs a previous column name with the renamed column
type RenamedColumn struct {
	OldName string
	Column  *Column
}

// RenamedIndex pairs a previous index name with the renamed index
type RenamedIndex struct {
	OldName string
	Index   *Index
}

// TableDiff describes the changes between two snapshots of one table
type TableDiff struct {
	// Name is used when OldTable is nil
	Name     string
	OldTable *Table
	// NewName is empty when the table is not renamed
	NewName string

	AddedColumns    []*Column
	DroppedColumns  []*Column
	ModifiedColumns []*ColumnDiff
	RenamedColumns  []RenamedColumn

	AddedIndexes    []*Index
	DroppedIndexes  []*Index
	ModifiedIndexes []*Index
	RenamedIndexes  []RenamedIndex

	AddedForeignKeys    []*ForeignKey
	DroppedForeignKeys  []*ForeignKey
	ModifiedForeignKeys []*ForeignKey
}

// Table returns the previous table snapshot or a bare table carrying only the name.
func (d *TableDiff) Table() *Table {
	if d.OldTable != nil {
		return d.OldTable
	}
	namespace, name := SplitQualifiedName(d.Name)
	return &Table{Schema: namespace, Name: name}
}

// IsEmpty reports whether the diff carries no change at all.
func (d *TableDiff) IsEmpty() bool {
	return d.NewName == "" &&
		len(d.AddedColumns) == 0 &&
		len(d.DroppedColumns) == 0 &&
		len(d.ModifiedColumns) == 0 &&
		len(d.RenamedColumns) == 0 &&
		len(d.AddedIndexes) == 0 &&
		len(d.DroppedIndexes) == 0 &&
		len(d.ModifiedIndexes) == 0 &&
		len(d.RenamedIndexes) == 0 &&
		len(d.AddedForeignKeys) == 0 &&
		len(d.DroppedForeignKeys) == 0 &&
		len(d.ModifiedForeignKeys) == 0
}
