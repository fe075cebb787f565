package migration

import (
	"fmt"

	"gorm.io/gorm"
)

// CheckSchema compares the live schema with the GORM models and returns every
// missing table or "table.column". The SQL files own the schema; this is the
// guard that they and the models have not drifted apart.
func CheckSchema(db *gorm.DB, models ...any) ([]string, error) {
	var missing []string
	m := db.Migrator()

	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		if !m.HasTable(model) {
			missing = append(missing, table)
			continue
		}
		for _, column := range stmt.Schema.DBNames {
			if !m.HasColumn(model, column) {
				missing = append(missing, table+"."+column)
			}
		}
	}
	return missing, nil
}
