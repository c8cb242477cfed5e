package migrate

import (
	"context"
	"fmt"

	"github.com/digikraal/ledgerview/pkg/config"
	"github.com/digikraal/ledgerview/pkg/db"
	"github.com/digikraal/ledgerview/pkg/logger"
)

// autoRunEnabled reports whether the embedded migrations apply at startup:
// always on sqlite, otherwise only in dev with the auto-migrate flag set.
func autoRunEnabled(cfg *config.Config) bool {
	if cfg.DB.Driver == db.DriverSQLite {
		return true
	}
	return cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}

// MaybeRunDev applies the embedded migrations when autoRunEnabled allows it.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !autoRunEnabled(cfg) {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	ctx = logg.WithField(ctx, "driver", cfg.DB.Driver)
	logg.Info(ctx, "migrate.autorun_start")
	if err := Run(ctx, sqlDB, cfg.DB.Driver, EmbeddedDir, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.autorun_done")
	return nil
}
