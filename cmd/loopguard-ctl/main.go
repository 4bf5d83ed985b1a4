package main

import "github.com/oshokin/loop-guard/cmd/loopguard-ctl/cmd"

func main() {
	cmd.Execute()
}
