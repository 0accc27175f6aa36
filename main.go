package main

import (
	"flag"
	"log"
	"os"

	"blobqueue/bot"
)

func main() {
	configPath := flag.String("config", os.Getenv("BLOBQUEUE_CONFIG"), "path to the config file (defaults to ./config.yaml)")
	flag.Parse()

	if err := bot.Start(*configPath); err != nil {
		log.Fatal(err)
	}
}
