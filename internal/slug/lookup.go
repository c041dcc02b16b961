package slug

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLookup reads existing slugs from one column of one table.
type GormLookup struct {
	db     *gorm.DB
	table  string
	column string
}

func NewGormLookup(db *gorm.DB, table, column string) *GormLookup {
	return &GormLookup{db: db, table: table, column: column}
}

// Latest walks the rows matching candidate newest first and returns the first
// one whose suffix is numeric. Rows such as "adonis-101-intro" for the
// candidate "adonis-101" share the prefix but belong to another title.
func (l *GormLookup) Latest(ctx context.Context, candidate string) (string, error) {
	col := clause.Column{Name: l.column}

	rows, err := l.db.WithContext(ctx).
		Table(l.table).
		Select(col.Name).
		Where("? = ? OR ? LIKE ?", col, candidate, col, candidate+"-%").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Rows()
	if err != nil {
		return "", fmt.Errorf("querying %s.%s: %w", l.table, l.column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return "", fmt.Errorf("scanning %s.%s: %w", l.table, l.column, err)
		}
		if value != "" && hasNumericSuffix(value, candidate) {
			return value, nil
		}
	}
	return "", rows.Err()
}
