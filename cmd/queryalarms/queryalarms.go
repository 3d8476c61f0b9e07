// Package queryalarms runs a composed predicate against the alarm record
// store.
package queryalarms

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opgrid/alarmlens/internal/pkg/alarmstore"
	"github.com/opgrid/alarmlens/internal/pkg/cmdutil"
)

var (
	presetName  string
	checkNames  []string
	dbPath      string
	fixturePath string
)

// QueryCmd composes a predicate and retrieves the matching alarm records.
var QueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve alarms matching the checked filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		modelsFlag, _ := cmd.Flags().GetString("models")
		translationsFlag, _ := cmd.Flags().GetString("translations")
		sess, _, err := cmdutil.OpenSession(
			cmdutil.GetStringConfig("models", modelsFlag),
			cmdutil.GetStringConfig("translations", translationsFlag))
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

		store, err := alarmstore.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if fixturePath != "" {
			alarms, err := alarmstore.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			if err := store.Seed(alarms); err != nil {
				return err
			}
		}

		alarms, err := store.Query(sess.Predicate())
		if err != nil {
			return err
		}
		fmt.Printf("predicate: %s\n", sess.Predicate())
		fmt.Printf("%d alarms\n", len(alarms))
		for _, a := range alarms {
			fmt.Printf("%s  sev=%-4d  %-12s  %-12s  %s\n",
				a.EventTime.Format(time.RFC3339), a.Severity, a.AlarmGroup,
				a.AlarmState, a.AlarmName)
		}
		return nil
	},
}

func init() {
	QueryCmd.Flags().StringVar(&presetName, "preset", "", "query with a preset instead of the default model")
	QueryCmd.Flags().StringSliceVar(&checkNames, "check", nil, "filter names to check before composing")
	QueryCmd.Flags().StringVar(&dbPath, "db", ":memory:", "alarm database path")
	QueryCmd.Flags().StringVar(&fixturePath, "fixture", "", "YAML alarm fixture to seed the database with")
}
