package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medistore/internal/api"
	"medistore/internal/app/service"
	"medistore/internal/app/worker"
	"medistore/internal/common/security"
	"medistore/internal/domain/repository"
	"medistore/internal/platform/config"
	"medistore/internal/platform/database"
	"medistore/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	productRepo := repository.NewPgProductRepository(database.DB)
	orderRepo := repository.NewPgOrderRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	productLocks := service.NewProductLocks()
	productService := service.NewProductService(productRepo, productLocks)
	inventoryService := service.NewInventoryService(productRepo, queue.RDB, productLocks)
	orderService := service.NewOrderService(orderRepo, inventoryService)

	// 7. Seed the administrator account (idempotent)
	if err := authService.EnsureAdmin(context.Background()); err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}
	fmt.Println("Admin account ensured.")

	// 8. Initialize Restock Worker (as a goroutine)
	restockWorker := worker.NewRestockWorker(queue.RDB, productRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go restockWorker.Start(workerCtx)
	fmt.Println("Restock worker started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(authService, userService, productService, orderService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
