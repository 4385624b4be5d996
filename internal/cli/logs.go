package cli

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vivekkundariya/lo1/internal/ui"
)

var (
	logsFollow bool
	logsTail   int
	logsList   bool
)

var logsCmd = &cobra.Command{
	Use:   "logs [service]",
	Short: "View aggregated or per-service logs",
	Long:  `View logs from every tracked service, or one named service, via docker compose logs.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("container not initialized")
		}

		_, workspaceDir, err := resolveWorkspace()
		if err != nil {
			return err
		}

		st, err := container.Orchestrator.State.Load(workspaceDir)
		if err != nil {
			return err
		}
		if st == nil {
			ui.Infof("no running workspace found here. Run 'lo1 up' to start one.")
			return nil
		}

		if logsList {
			names := make([]string, 0, len(st.Services))
			for name := range st.Services {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		}

		dockerArgs := []string{"compose", "-p", st.ProjectName}
		for _, f := range st.FileArgs {
			dockerArgs = append(dockerArgs, "-f", f)
		}
		dockerArgs = append(dockerArgs, "logs")

		if logsFollow {
			dockerArgs = append(dockerArgs, "-f")
		}
		if logsTail > 0 {
			dockerArgs = append(dockerArgs, "--tail", strconv.Itoa(logsTail))
		}
		if len(args) > 0 {
			dockerArgs = append(dockerArgs, args[0])
		}

		dockerCmd := exec.CommandContext(cmd.Context(), "docker", dockerArgs...)
		dockerCmd.Dir = st.WorkspaceDir
		dockerCmd.Stdout = os.Stdout
		dockerCmd.Stderr = os.Stderr
		dockerCmd.Stdin = os.Stdin

		return dockerCmd.Run()
	},
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output")
	logsCmd.Flags().IntVar(&logsTail, "tail", 100, "number of lines to show from the end")
	logsCmd.Flags().BoolVar(&logsList, "list", false, "list tracked service names instead of showing logs")
}
