package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/provisioning/database"
	"github.com/imamik/wpfleet/internal/provisioning/filesystem"
)

// CreateDatabases creates the database and user of every site.
func CreateDatabases(ctx context.Context, opts Options) error {
	b, err := loadBatch(opts)
	if err != nil {
		return err
	}
	return b.run(ctx, []provisioning.Stage{b.databaseStage()})
}

// Install stages, configures, hardens and installs every site against
// databases that already exist.
func Install(ctx context.Context, opts Options) error {
	b, err := loadBatch(opts)
	if err != nil {
		return err
	}
	stages, err := b.installStages(ctx)
	if err != nil {
		return err
	}
	return b.run(ctx, stages)
}

// SetPermissions re-applies the permission model to existing installations.
func SetPermissions(ctx context.Context, opts Options) error {
	b, err := loadBatch(opts)
	if err != nil {
		return err
	}
	stages, err := b.permissionStages()
	if err != nil {
		return err
	}
	return b.run(ctx, stages)
}

// Deploy runs every stage, from database creation to finalization.
func Deploy(ctx context.Context, opts Options) error {
	b, err := loadBatch(opts)
	if err != nil {
		return err
	}
	stages, err := b.deployStages(ctx)
	if err != nil {
		return err
	}
	return b.run(ctx, stages)
}

// CleanupDatabases drops the database and user of every site.
// It refuses to run unless opts.Yes is set.
func CleanupDatabases(ctx context.Context, opts Options) error {
	if err := requireConfirmation("cleanup-databases", "drops every listed database and user", opts); err != nil {
		return err
	}
	b, err := loadBatch(opts)
	if err != nil {
		return err
	}
	return b.run(ctx, []provisioning.Stage{database.NewDropStage(database.NewSession(openDatabase))})
}

// CleanupWordPress deletes the content of every site directory.
// It refuses to run unless opts.Yes is set.
func CleanupWordPress(ctx context.Context, opts Options) error {
	if err := requireConfirmation("cleanup-wordpress", "deletes the content of every listed directory", opts); err != nil {
		return err
	}
	b, err := loadBatch(opts)
	if err != nil {
		return err
	}
	return b.run(ctx, []provisioning.Stage{filesystem.NewRemoveStage()})
}

func requireConfirmation(command, effect string, opts Options) error {
	if opts.Yes {
		return nil
	}
	return fmt.Errorf("%s %s; rerun with --yes to confirm", command, effect)
}
