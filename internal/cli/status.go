package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workspace's running services",
	Long:  `Display the status of every service lo1 is tracking for this workspace, read from the persisted state file and docker compose ps.`,
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
			if jsonOutput {
				fmt.Println("[]")
				return nil
			}
			ui.Infof("no running workspace found here. Run 'lo1 up' to start one.")
			return nil
		}

		rows := composeStatuses(cmd, st)

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		renderStatusTable(rows)
		return nil
	},
}

type statusRow struct {
	Service string `json:"service"`
	Runner  string `json:"runner"`
	State   string `json:"state"`
	Health  string `json:"health,omitempty"`
}

// composeStatuses merges the persisted runtime record for each service
// with docker compose ps's live state. A Ps failure (e.g. compose not
// running) degrades to the persisted record alone rather than an error.
func composeStatuses(cmd *cobra.Command, st *ports.WorkspaceState) []statusRow {
	psByService := map[string]ports.ComposeServiceStatus{}
	statuses, err := container.Orchestrator.Compose.Ps(cmd.Context(), ports.ComposeOptions{
		ProjectName: st.ProjectName,
		FileArgs:    st.FileArgs,
		Cwd:         st.WorkspaceDir,
	})
	if err == nil {
		for _, s := range statuses {
			psByService[s.Service] = s
		}
	}

	names := make([]string, 0, len(st.Services))
	for name := range st.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]statusRow, 0, len(names))
	for _, name := range names {
		rt := st.Services[name]
		row := statusRow{Service: name, Runner: string(rt.Runner), State: "running"}
		if ps, ok := psByService[name]; ok {
			row.State = ps.State
			row.Health = ps.Health
		}
		rows = append(rows, row)
	}
	return rows
}

func renderStatusTable(rows []statusRow) {
	if len(rows) == 0 {
		ui.Infof("no services tracked for this workspace.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Service", "Runner", "State", "Health"})

	for _, r := range rows {
		color, icon := text.FgYellow, "○"
		switch r.State {
		case "running":
			color, icon = text.FgGreen, "●"
		case "exited", "dead":
			color, icon = text.FgRed, "●"
		}
		t.AppendRow(table.Row{
			r.Service,
			r.Runner,
			color.Sprint(icon + " " + r.State),
			valueOrDash(r.Health),
		})
	}

	fmt.Println()
	t.Render()
	fmt.Println()
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
