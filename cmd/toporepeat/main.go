package main

import (
	toporepeatcmd "github.com/junhaiqi/TopoRepeat/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	toporepeatcmd.SetVersionInfo(version, commit)
	toporepeatcmd.Execute()
}
