package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/yungbote/hookbrief-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	runErr := a.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a.Close(closeCtx)
	cancel()

	if runErr != nil {
		fmt.Printf("server exited: %v\n", runErr)
		os.Exit(1)
	}
}
