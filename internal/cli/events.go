package cli

import (
	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/ui"
)

// printEvent renders one orchestrator event via the ui package's
// step/status helpers. Shared by up and down so both commands narrate
// the same phase/service/hook/error stream.
func printEvent(evt ports.OrchestratorEvent) {
	switch evt.Kind {
	case ports.EventPhase:
		ui.Header(evt.Phase)
	case ports.EventService:
		switch evt.ServiceStatus {
		case ports.ServiceStarting:
			ui.Step("starting %s", evt.Service)
		case ports.ServiceStarted:
			ui.Successf("%s started", evt.Service)
		case ports.ServiceStopping:
			ui.Step("stopping %s", evt.Service)
		case ports.ServiceStopped:
			ui.Successf("%s stopped", evt.Service)
		}
	case ports.EventHook:
		ui.SubStep("[%s] %s", evt.Hook, evt.HookOutput)
	case ports.EventError:
		ui.Errorf("%s", evt.Message)
	}
}
