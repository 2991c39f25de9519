package main

import (
	"slugsched-backend/cmd/slugsched-cli/commands"
	"slugsched-backend/lib/serviceutil"
	"slugsched-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "slugsched-cli")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
