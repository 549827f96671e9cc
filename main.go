package main

import (
	"fmt"
	"log"

	"github.com/lazharichir/holdem/server"
)

func main() {
	fmt.Println("Starting Hold'em Table Server...")

	s := server.NewServer()
	err := s.Start("7777")

	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
