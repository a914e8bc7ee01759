package main

import "github.com/oshokin/greenhouse-monitor/cmd/ghc-controller/cmd"

func main() {
	cmd.Execute()
}
