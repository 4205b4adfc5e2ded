package main

import "timetracker/cli"

func main() {
	cli.Execute()
}
