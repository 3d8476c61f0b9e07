// Package presets implements the preset edit-model management commands.
package presets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opgrid/alarmlens/internal/pkg/cmdutil"
)

// modelPaths resolves the model and translation file paths, flag first and
// config second.
func modelPaths(cmd *cobra.Command) (models, translations string) {
	modelsFlag, _ := cmd.Flags().GetString("models")
	translationsFlag, _ := cmd.Flags().GetString("translations")
	return cmdutil.GetStringConfig("models", modelsFlag),
		cmdutil.GetStringConfig("translations", translationsFlag)
}

// PresetsCmd is the parent command for preset management.
var PresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage preset filter models",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List edit models",
	RunE: func(cmd *cobra.Command, args []string) error {
		modelsPath, translationsPath := modelPaths(cmd)
		sess, _, err := cmdutil.OpenSession(modelsPath, translationsPath)
		if err != nil {
			return err
		}
		for _, inst := range sess.Store().Instances() {
			fmt.Println(inst.Name())
		}
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a preset (allocates the next free name when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelsPath, translationsPath := modelPaths(cmd)
		sess, root, err := cmdutil.OpenSession(modelsPath, translationsPath)
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		created, err := sess.GeneratePresetFilters(name)
		if err != nil {
			return err
		}
		if err := cmdutil.SaveModels(modelsPath, root); err != nil {
			return err
		}
		fmt.Println(created)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelsPath, translationsPath := modelPaths(cmd)
		sess, root, err := cmdutil.OpenSession(modelsPath, translationsPath)
		if err != nil {
			return err
		}
		if err := sess.Store().Delete(args[0]); err != nil {
			return err
		}
		return cmdutil.SaveModels(modelsPath, root)
	},
}

func init() {
	PresetsCmd.AddCommand(listCmd)
	PresetsCmd.AddCommand(createCmd)
	PresetsCmd.AddCommand(deleteCmd)
}
