package main

import "scenarist/cmd"

// version is injected via ldflags at release time.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
