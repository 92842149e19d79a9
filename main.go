package main

import "github.com/mizuki-dev/subrefine/cmd"

func main() {
	cmd.Execute()
}
