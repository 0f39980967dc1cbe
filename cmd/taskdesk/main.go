package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
	"taskdesk/internal/ordering"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	activitySvc := service.NewActivityService(activityRepo)
	defer activitySvc.Flush()

	locks := ordering.NewScopeLock()
	categorySvc := service.NewCategoryService(categoryRepo, activitySvc, locks)
	todoSvc := service.NewTodoService(todoRepo, categoryRepo, activitySvc, locks)

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.PruneInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.PruneInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := activitySvc.Prune(jobCtx, cfg.ActivityRetention); err != nil {
				log.Printf("prune: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule prune: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	handler := api.NewHandler(userRepo, todoSvc, categorySvc)
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("taskdesk listening on %s", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
