package main

import (
	"os"

	"github.com/minitask/client/cmd/minitask/commands"
)

// @title MiniTask API
// @version 1.0
// @description Reference task service for the MiniTask client

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	os.Exit(commands.Execute())
}
