package main

import "github.com/opgrid/alarmlens/cmd"

func main() {
	cmd.Execute()
}
