package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var workspaceName string

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage the run manifest of an analysis directory",
}

var workspaceInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create workspace.json in dir (default: current directory)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create workspace dir: %w", err)
		}
		w, err := workspace.Init(dir, workspaceName)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Created workspace '%s' at %s\n", w.Name, w.RootDir())
		return nil
	},
}

var workspaceLogCmd = &cobra.Command{
	Use:   "log [dir]",
	Short: "List the recorded steps of a workspace",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		w, err := workspace.Locate(dir)
		if err != nil {
			return err
		}
		fmt.Printf("Workspace: %s (%d steps)\n", w.Name, len(w.Steps))
		for i, s := range w.Steps {
			fmt.Printf("%3d. %s  %s  [%s]\n", i+1, s.At.Format("2006-01-02 15:04:05"), s.Command, shortID(s.ID))
			if len(s.Inputs) > 0 {
				fmt.Printf("     in:  %s\n", strings.Join(s.Inputs, ", "))
			}
			if len(s.Outputs) > 0 {
				fmt.Printf("     out: %s\n", strings.Join(s.Outputs, ", "))
			}
			if len(s.Summary) > 0 {
				keys := make([]string, 0, len(s.Summary))
				for k := range s.Summary {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				parts := make([]string, len(keys))
				for j, k := range keys {
					parts[j] = k + "=" + s.Summary[k]
				}
				fmt.Printf("     %s\n", strings.Join(parts, " "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceInitCmd, workspaceLogCmd)
	workspaceInitCmd.Flags().StringVarP(&workspaceName, "name", "n", "", "workspace name (default: directory name)")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
