package main

import (
	_ "time/tzdata"

	"github.com/Alijeyrad/optica_backend/cmd"
)

func main() {
	cmd.Execute()
}
