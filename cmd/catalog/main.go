package main

import (
	stdLog "log"

	"github.com/joho/godotenv"

	"github.com/spiritus-lectoris/catalog-service/catalog/app"
	"github.com/spiritus-lectoris/catalog-service/catalog/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, using process environment")
	}
	cfg := config.NewConfig()

	app.Run(cfg)
}
