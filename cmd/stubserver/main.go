package main

import (
	"flag"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/icebreak-chat/icebreak-go/internal/stubserver"
)

func main() {
	addr := flag.String("addr", ":5000", "listen address")
	dbPath := flag.String("db", "icebreak-users.db", "sqlite user database path")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	users, err := stubserver.OpenUserDB(*dbPath)
	if err != nil {
		logger.Fatal("open user db", zap.Error(err))
	}
	defer users.Close()

	srv := stubserver.New(users, stubserver.WithLogger(logger))

	logger.Info("listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
