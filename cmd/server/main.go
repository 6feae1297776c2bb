package main

import "github.com/iliyamo/event-enrollment-api/cmd/server/cmd"

func main() {
	cmd.Execute()
}
