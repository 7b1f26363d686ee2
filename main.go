package main

import "github.com/Sena-ops/owaspscan/cmd"

func main() {
	cmd.Execute()
}
