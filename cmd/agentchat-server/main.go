package main

import (
	"fmt"
	"log"
	"net/http"

	"agentchat-backend/internal/config"
	"agentchat-backend/internal/server"
)

func main() {
	cfg := config.Load()
	s, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	addr := ":" + cfg.Port
	fmt.Printf("agentchat server listening on %s (backend: %s)\n", addr, cfg.Backend)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}
