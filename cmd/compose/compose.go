// Package compose implements the predicate-composition command.
package compose

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opgrid/alarmlens/internal/pkg/cmdutil"
)

var (
	presetName string
	checkNames []string
	apply      bool
)

// ComposeCmd prints the predicate the current (or a preset) filter model
// composes to.
var ComposeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose the query predicate from checked filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		modelsFlag, _ := cmd.Flags().GetString("models")
		translationsFlag, _ := cmd.Flags().GetString("translations")
		modelsPath := cmdutil.GetStringConfig("models", modelsFlag)
		sess, root, err := cmdutil.OpenSession(modelsPath, cmdutil.GetStringConfig("translations", translationsFlag))
		if err != nil {
			return err
		}
		if presetName != "" {
			if err := sess.LoadPreset(presetName); err != nil {
				return err
			}
		}
		for _, name := range checkNames {
			sess.SetChecked(name, true)
		}
		if err := sess.Apply(); err != nil {
			return err
		}
		if apply {
			if err := cmdutil.SaveModels(modelsPath, root); err != nil {
				return err
			}
		}
		fmt.Println(sess.Predicate())
		return nil
	},
}

func init() {
	ComposeCmd.Flags().StringVar(&presetName, "preset", "", "compose from a preset instead of the default model")
	ComposeCmd.Flags().StringSliceVar(&checkNames, "check", nil, "filter names to check before composing")
	ComposeCmd.Flags().BoolVar(&apply, "apply", false, "persist the checked state back to the model file")
}
