// Command wgdisplay-installer provisions a Raspberry Pi as a WG Display.
package main

import "github.com/oshokin/wgdisplay-installer/cmd/wgdisplay-installer/cmd"

func main() {
	cmd.Execute()
}
