package main

import "github.com/SscSPs/statement_importer/cmd/importer_cli/cmd"

func main() {
	cmd.Execute()
}
