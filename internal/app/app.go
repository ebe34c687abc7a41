package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partsrfq/internal/config"
	"partsrfq/internal/controller"
	"partsrfq/internal/models"
	"partsrfq/internal/notify"
	"partsrfq/internal/repository"
	"partsrfq/internal/router"
	"partsrfq/internal/service"
)

type App struct {
	repo       *repository.Repository
	service    *service.Service
	controller *controller.Controller
	stopSig    chan os.Signal
	cfg        *config.Config

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	app.repo, err = repository.NewRepository(nil, &app.cfg.PostgresConfig)
	if err != nil {
		return nil, err
	}

	app.service = service.NewService(app.repo, notify.New(app.cfg.SMTPConfig), app.cfg.PublicBaseURL)
	app.service.Subscribe(logEvent)
	app.controller = controller.NewController(app.service)

	return app, nil
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		log.Printf("Received signal: %s\n", sig)
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      router.NewRouter(app.controller),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Println("Http server error:", err)
		}
	}()

	if app.cfg.SweepInterval > 0 {
		go app.runSweeper(ctx)
	}

	log.Printf("Server started at %s, listening for connections...\n", app.cfg.ServerAddress)
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	log.Println("Shutting down http server...")
	server.Shutdown(timeout)

	log.Println("Closing repository...")
	err := app.repo.Close()
	if err != nil {
		log.Println("Repository closing error:", err)
	}

	close(app.Done)
	log.Println("Exiting app.")
}

// runSweeper fires the understock sweep on a fixed interval until shutdown.
func (app *App) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(app.cfg.SweepInterval)
	defer ticker.Stop()

	log.Printf("Understock sweeper started, interval %s", app.cfg.SweepInterval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			created, err := app.service.CollectUnderstocked(ctx)
			if err != nil {
				log.Println("Understock sweep error:", err)
				continue
			}
			if len(created) > 0 {
				log.Printf("Understock sweep opened %d quote request(s)", len(created))
			}
		}
	}
}

func logEvent(event models.Event) {
	log.Printf("event: type=%s request=%s line=%s product=%s order=%s",
		event.Type, event.RequestId, event.LineId, event.ProductId, event.OrderId)
}
