package main

import "github.com/docuflow/records-console/cmd"

func main() {
	cmd.Execute()
}
