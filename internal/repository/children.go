package repository

import (
	"context"
	"fmt"
	"strings"
)

// ChildTable describes a table of string values owned by a parent row.
type ChildTable struct {
	Name         string
	ParentColumn string
	ValueColumn  string
}

var (
	FeatureTable   = ChildTable{Name: "template_features", ParentColumn: "template_id", ValueColumn: "feature_name"}
	TechStackTable = ChildTable{Name: "template_tech_stack", ParentColumn: "template_id", ValueColumn: "tech_name"}
)

// ListChildren returns the values owned by parentID in insertion order.
func ListChildren(ctx context.Context, q DBTX, table ChildTable, parentID int64) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY id`, table.ValueColumn, table.Name, table.ParentColumn)
	rows, err := q.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, translate(err, "list "+table.Name)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, translate(err, "scan "+table.Name)
		}
		values = append(values, v)
	}
	return values, translate(rows.Err(), "list "+table.Name)
}

// DeleteChildren removes every row owned by parentID.
func DeleteChildren(ctx context.Context, q DBTX, table ChildTable, parentID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table.Name, table.ParentColumn)
	_, err := q.ExecContext(ctx, query, parentID)
	return translate(err, "delete "+table.Name)
}

// InsertChildren adds values for parentID with one batch insert.
func InsertChildren(ctx context.Context, q DBTX, table ChildTable, parentID int64, values []string) error {
	if len(values) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, `INSERT INTO %s (%s, %s) VALUES `, table.Name, table.ParentColumn, table.ValueColumn)
	args := make([]any, 0, len(values)*2)
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?)")
		args = append(args, parentID, v)
	}

	_, err := q.ExecContext(ctx, b.String(), args...)
	return translate(err, "insert "+table.Name)
}

// ReplaceChildren makes values the complete set owned by parentID: existing
// rows are deleted and the new set inserted. It must run inside a transaction
// so a failed insert cannot leave the parent without children.
func ReplaceChildren(ctx context.Context, q DBTX, table ChildTable, parentID int64, values []string) error {
	if err := DeleteChildren(ctx, q, table, parentID); err != nil {
		return err
	}
	return InsertChildren(ctx, q, table, parentID, values)
}
