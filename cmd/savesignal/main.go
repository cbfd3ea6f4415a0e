package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"savesignal/cmd/savesignal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
