package main

import "github.com/strrl/intel-brief/internal/cmd"

func main() {
	cmd.Execute()
}
