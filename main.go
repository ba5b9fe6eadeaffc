package main

import "github.com/eryajf/qaloop/cmd"

func main() {
	cmd.Execute()
}
