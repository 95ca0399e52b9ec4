package main

import "github.com/codespire/finance-backend/cmd"

func main() {
	cmd.Execute()
}
