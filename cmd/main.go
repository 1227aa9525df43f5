package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"khidmaBack/internal/config"
	"khidmaBack/internal/events"
	"khidmaBack/internal/metrics"
	"khidmaBack/internal/push"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	cfg := config.LoadConfig()

	addrDefault := cfg.Server.Address
	if port := os.Getenv("PORT"); port != "" {
		addrDefault = ":" + port
	}
	addr := flag.String("addr", addrDefault, "HTTP network address")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)

	db, err := openDB(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	bus := events.NewRedisBus(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fcmClient, err := push.NewClient(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		errorLog.Printf("firebase init failed, push disabled: %v", err)
	}

	metrics.Register()

	app := initializeApp(cfg, db, errorLog, infoLog)

	app.wsManager = NewWebSocketManager()
	go app.wsManager.Run()
	go app.runBusSubscriber(ctx, bus)

	sender := &push.Sender{Client: fcmClient, Tokens: app.userRepo, ErrorLog: errorLog}
	startOutboxDispatcher(ctx, app.outboxRepo, app.notificationRepo, bus, sender, infoLog, errorLog)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Refresh-Token"},
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     errorLog,
		Handler:      c.Handler(app.routes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	infoLog.Printf("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil {
		errorLog.Fatal(err)
	}
}

func openDB(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = "mysql"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(35)
	return db, nil
}

// runBusSubscriber feeds redis change events into the websocket hub,
// reconnecting with a small backoff when the subscription drops.
func (app *application) runBusSubscriber(ctx context.Context, bus *events.RedisBus) {
	for {
		err := bus.Subscribe(ctx, func(userID int, ev events.Event) {
			app.wsManager.Send(userID, ev)
		})
		if ctx.Err() != nil {
			return
		}
		app.errorLog.Printf("event bus subscription lost: %v", err)
		time.Sleep(2 * time.Second)
	}
}
