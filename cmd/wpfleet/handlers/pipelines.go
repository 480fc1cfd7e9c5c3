package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/wpfleet/internal/provisioning"
	"github.com/imamik/wpfleet/internal/provisioning/database"
	"github.com/imamik/wpfleet/internal/provisioning/filesystem"
	"github.com/imamik/wpfleet/internal/provisioning/installer"
	"github.com/imamik/wpfleet/internal/provisioning/permissions"
	"github.com/imamik/wpfleet/internal/provisioning/wpconfig"
)

func (b *batchEnv) databaseStage() provisioning.Stage {
	mode := database.ModeCleanSlate
	if b.opts.UseExistingDatabases {
		mode = database.ModeUseExisting
	}
	return database.NewStage(database.NewSession(openDatabase), mode)
}

func (b *batchEnv) stagingStage(ctx context.Context) (provisioning.Stage, error) {
	policy, err := filesystem.ParsePolicy(b.opts.CleanupPolicy)
	if err != nil {
		return nil, err
	}
	source, err := filesystem.ParseSource(b.opts.Archive, b.objectOpener(ctx))
	if err != nil {
		return nil, err
	}

	stager := &filesystem.Stager{
		Policy: policy,
		Archive: &filesystem.Acquirer{
			Source:       source,
			SHA256:       b.opts.ArchiveSHA256,
			Timeout:      b.timeouts.Download,
			MaxAttempts:  b.timeouts.RetryMaxAttempts,
			InitialDelay: b.timeouts.RetryInitialDelay,
		},
		ExtractTimeout: b.timeouts.Extract,
	}
	if policy == filesystem.PolicyConfirm {
		stager.Confirmer = newConfirmer()
	}
	return filesystem.NewStage(stager), nil
}

func (b *batchEnv) permissionsStage() (provisioning.Stage, error) {
	hardener := &permissions.Hardener{}
	if b.opts.WebUser != "" {
		owner, err := permissions.LookupOwner(b.opts.WebUser)
		if err != nil {
			return nil, fmt.Errorf("invalid --web-user: %w", err)
		}
		hardener.Owner = owner
	}
	return permissions.NewStage(hardener), nil
}

// installStages returns staging through finalize, the part shared by
// install and deploy.
func (b *batchEnv) installStages(ctx context.Context) ([]provisioning.Stage, error) {
	staging, err := b.stagingStage(ctx)
	if err != nil {
		return nil, err
	}
	hardening, err := b.permissionsStage()
	if err != nil {
		return nil, err
	}

	inst := newSiteInstaller(b.observer)
	stages := []provisioning.Stage{
		staging,
		wpconfig.NewStage(&wpconfig.Writer{}, b.opts.BaseDomain),
		hardening,
		installer.NewStage(inst),
	}
	if b.opts.AppPasswords {
		stages = append(stages, installer.NewAppPasswordStage(inst))
	}
	return append(stages, permissions.NewFinalizeStage()), nil
}

func (b *batchEnv) deployStages(ctx context.Context) ([]provisioning.Stage, error) {
	rest, err := b.installStages(ctx)
	if err != nil {
		return nil, err
	}
	return append([]provisioning.Stage{b.databaseStage()}, rest...), nil
}

func (b *batchEnv) permissionStages() ([]provisioning.Stage, error) {
	hardening, err := b.permissionsStage()
	if err != nil {
		return nil, err
	}
	return []provisioning.Stage{hardening, permissions.NewFinalizeStage()}, nil
}
