package main

import (
	"sfcatalog/cmd/sfcatalog/cmd"
)

func main() {
	cmd.Execute()
}
