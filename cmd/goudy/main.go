package main

import (
	"willamette-dining/cmd/goudy/commands"
	"willamette-dining/lib/util/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext()
	defer stop()
	commands.ExecuteContext(ctx)
}
