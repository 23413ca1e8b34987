package main

import "github.com/Mohsinsiddi/govtoken/cmd"

func main() {
	cmd.Execute()
}
