// The main package for the wordfreq executable.
package main

import (
	"github.com/JakeFAU/essay-wordfreq/cmd"
)

func main() {
	cmd.Execute()
}
