package main

import (
	"github.com/foomo/themeserver/cmd"
)

func main() {
	cmd.Execute()
}
