package migrations

import (
	"context"
	"fmt"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20261016000002, down_20261016000002)
}

// up_20261016000002 creates the tasks table
func up_20261016000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating tasks table...")

	_, err := db.NewCreateTable().
		Model((*models.Task)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}

	// List endpoints order newest first
	_, err = db.NewCreateIndex().
		Model((*models.Task)(nil)).
		Index("idx_tasks_created_at").
		Column("created_at").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create tasks created_at index: %w", err)
	}

	if IsPostgreSQL(db) {
		_, err = db.ExecContext(ctx, `
			ALTER TABLE tasks
			ADD CONSTRAINT tasks_title_not_blank CHECK (length(btrim(title)) > 0)
		`)
		if err != nil {
			return fmt.Errorf("failed to add title constraint: %w", err)
		}
	}

	fmt.Println(" OK")
	return nil
}

// down_20261016000002 drops the tasks table
func down_20261016000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping tasks table...")

	_, err := db.NewDropTable().
		Model((*models.Task)(nil)).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop tasks table: %w", err)
	}

	fmt.Println(" OK")
	return nil
}
