// Package reconcile implements the model-synchronization command.
package reconcile

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opgrid/alarmlens/internal/pkg/catalog"
	"github.com/opgrid/alarmlens/internal/pkg/cmdutil"
	"github.com/opgrid/alarmlens/internal/pkg/logger"
	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
	"github.com/opgrid/alarmlens/internal/pkg/session"
	"github.com/opgrid/alarmlens/internal/pkg/signals"
	"github.com/opgrid/alarmlens/internal/pkg/watcher"
)

var watch bool

// ReconcileCmd rebuilds the schema type from the configuration and
// reconciles every edit model against it.
var ReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Synchronize edit models with the filter configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		modelsFlag, _ := cmd.Flags().GetString("models")
		translationsFlag, _ := cmd.Flags().GetString("translations")
		modelsPath := cmdutil.GetStringConfig("models", modelsFlag)
		translationsPath := cmdutil.GetStringConfig("translations", translationsFlag)

		root, err := cmdutil.LoadModels(modelsPath)
		if err != nil {
			return err
		}
		n, err := reconcileTree(modelsPath, translationsPath, root)
		if err != nil {
			return err
		}
		fmt.Printf("reconciled %d edit models\n", n)

		if !cmdutil.GetBoolConfig("reconcile.watch", watch) {
			return nil
		}
		w := watcher.New(watcher.DefaultConfig(), modelsPath, func(root *nodetree.Node) {
			if _, err := reconcileTree(modelsPath, translationsPath, root); err != nil {
				logger.Warn("reconcile failed", "error", err)
			}
		})
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		cleanup := signals.SetupHandler(ctx, cancel)
		defer cleanup()
		<-ctx.Done()
		return nil
	},
}

// reconcileTree synchronizes every edit model in root and saves the tree
// back only when reconciliation actually changed it, so a file watcher does
// not chase its own writes.
func reconcileTree(modelsPath, translationsPath string, root *nodetree.Node) (int, error) {
	before, err := nodetree.Marshal(root)
	if err != nil {
		return 0, err
	}
	table, err := cmdutil.LoadTranslations(translationsPath)
	if err != nil {
		return 0, err
	}
	sess, err := session.New(session.Config{
		Parent:    root,
		OwnerName: cmdutil.OwnerNodeName,
		Catalog:   catalog.New(table),
	})
	if err != nil {
		return 0, err
	}
	if err := sess.UpdateCustomAndPresetsFilters(); err != nil {
		return 0, err
	}
	after, err := nodetree.Marshal(root)
	if err != nil {
		return 0, err
	}
	if !bytes.Equal(before, after) {
		if err := cmdutil.SaveModels(modelsPath, root); err != nil {
			return 0, err
		}
	}
	return len(sess.Store().Instances()), nil
}

func init() {
	ReconcileCmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-reconcile when the model file changes")
}
