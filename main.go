package main

import "taskboard/cmd"

func main() {
	cmd.Execute()
}
