// Command tkctl is a host-side integration smoke test for the haptic
// runtime: a small Cobra CLI that wires api.Facade (spec §4.F) to the
// in-process transport and drives it interactively.
package main

import "hapticrt/cmd/tkctl/cmd"

func main() {
	cmd.Execute()
}
