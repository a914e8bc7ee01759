package main

import "github.com/oshokin/greenhouse-monitor/cmd/ghc-status/cmd"

func main() {
	cmd.Execute()
}
