package main

import "github.com/taurusgroup/zkauth/cmd/zkauth/cmd"

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	cmd.AppVersion = version
	cmd.AppBuildTime = buildTime
	cmd.Execute()
}
