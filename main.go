package main

import (
	"github.com/gnunet-go/gns/cmd"
)

func main() {
	cmd.Execute()
}
