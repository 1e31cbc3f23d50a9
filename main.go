package main

import (
	"github.com/syncwell/mirror/cmd"
	"github.com/syncwell/mirror/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
