package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"vtrim/domain/video"
	"vtrim/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for preset commands
var DefaultOutput OutputWriter = os.Stdout

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage named trim ranges",
	Long: `Manage named trim ranges stored in the configuration file.

Examples:
  vtrim preset list
  vtrim preset add --key intro --start 00:00:00 --end 00:01:30
  vtrim preset update intro --end 00:02:00
  vtrim preset remove intro`,
}

func init() {
	rootCmd.AddCommand(presetCmd)

	presetCmd.AddCommand(presetAddCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetRemoveCmd)
	presetCmd.AddCommand(presetUpdateCmd)
}

func requireConfig() (*config.Config, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("config file not found. Run 'vtrim setup' first")
	}
	return cfg, nil
}

// --- ADD command ---

var (
	presetKey   string
	presetStart string
	presetEnd   string
)

var presetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a named trim range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunPresetAddWithDependencies(cfg, cfgFile, presetKey, presetStart, presetEnd, DefaultOutput)
	},
}

func init() {
	presetAddCmd.Flags().StringVar(&presetKey, "key", "", "Unique key for the preset (required)")
	presetAddCmd.Flags().StringVar(&presetStart, "start", "", "Start time (required)")
	presetAddCmd.Flags().StringVar(&presetEnd, "end", "", "End time (required)")
	presetAddCmd.MarkFlagRequired("key")
	presetAddCmd.MarkFlagRequired("start")
	presetAddCmd.MarkFlagRequired("end")
}

// RunPresetAddWithDependencies runs the add command with injected dependencies
func RunPresetAddWithDependencies(cfg *config.Config, configPath, key, start, end string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.AddPreset(key, start, end); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added preset %q: %s - %s\n", key, start, end)
	return nil
}

// --- LIST command ---

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List named trim ranges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunPresetListWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

// RunPresetListWithDependencies runs the list command with injected dependencies
func RunPresetListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	presets := mgr.ListPresets()
	if len(presets) == 0 {
		fmt.Fprintln(out, "No presets configured.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSTART\tEND\tDURATION")
	for _, p := range presets {
		duration := "invalid"
		if r, err := p.Range(); err == nil {
			duration = video.TimestampFromSeconds(r.Duration()).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Key, p.Start, p.End, duration)
	}
	return w.Flush()
}

// --- REMOVE command ---

var presetRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a named trim range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunPresetRemoveWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// RunPresetRemoveWithDependencies runs the remove command with injected dependencies
func RunPresetRemoveWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.RemovePreset(key); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed preset %q\n", key)
	return nil
}

// --- UPDATE command ---

var (
	updateStart string
	updateEnd   string
)

var presetUpdateCmd = &cobra.Command{
	Use:   "update <key>",
	Short: "Change the start or end of a named trim range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunPresetUpdateWithDependencies(cfg, cfgFile, args[0], updateStart, updateEnd, DefaultOutput)
	},
}

func init() {
	presetUpdateCmd.Flags().StringVar(&updateStart, "start", "", "New start time")
	presetUpdateCmd.Flags().StringVar(&updateEnd, "end", "", "New end time")
}

// RunPresetUpdateWithDependencies runs the update command with injected dependencies
func RunPresetUpdateWithDependencies(cfg *config.Config, configPath, key, start, end string, out OutputWriter) error {
	if start == "" && end == "" {
		return fmt.Errorf("nothing to update: pass --start and/or --end")
	}
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.UpdatePreset(key, start, end); err != nil {
		return err
	}
	p, _ := mgr.GetPreset(key)
	fmt.Fprintf(out, "Updated preset %q: %s - %s\n", p.Key, p.Start, p.End)
	return nil
}
