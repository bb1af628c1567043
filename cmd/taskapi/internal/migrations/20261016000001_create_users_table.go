package migrations

import (
	"context"
	"fmt"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20261016000001, down_20261016000001)
}

// up_20261016000001 creates the users table
func up_20261016000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")

	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*models.User)(nil)).
		Index("idx_users_disabled_at").
		Column("disabled_at").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users disabled_at index: %w", err)
	}

	fmt.Println(" OK")
	return nil
}

// down_20261016000001 drops the users table
func down_20261016000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping users table...")

	_, err := db.NewDropTable().
		Model((*models.User)(nil)).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop users table: %w", err)
	}

	fmt.Println(" OK")
	return nil
}
