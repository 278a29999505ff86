// The main package for the literary-clock executable.
package main

import "github.com/JakeFAU/literary-clock/cmd"

func main() {
	cmd.Execute()
}
