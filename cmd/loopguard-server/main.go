package main

import "github.com/oshokin/loop-guard/cmd/loopguard-server/cmd"

func main() {
	cmd.Execute()
}
