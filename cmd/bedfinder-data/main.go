package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bedfinder-data/internal/config"
	"bedfinder-data/internal/database"
	httpapi "bedfinder-data/internal/http"
	"bedfinder-data/internal/logger"
	"bedfinder-data/internal/repository"
	"bedfinder-data/internal/service"
	"bedfinder-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	if cfg.SeedDemo {
		seedDemo(db, log)
	}

	accountsRepo := repository.NewPostgresAccountsRepository(db)
	profilesRepo := repository.NewPostgresProfilesRepository(db)
	hospitalsRepo := repository.NewPostgresHospitalsRepository(db)
	bedsRepo := repository.NewPostgresBedsRepository(db)

	authService := service.NewAuthService(
		accountsRepo, profilesRepo, kv,
		time.Duration(cfg.Session.TTLHours)*time.Hour, log,
	)
	inventoryService := service.NewInventoryService(hospitalsRepo, bedsRepo, log)
	contactService := service.NewContactService(cfg.Notify.BaseURL, log)

	router := httpapi.NewRouter(log)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authService, log))
	router.RegisterDataRoutes(httpapi.NewHospitalsHandler(inventoryService, log))
	router.RegisterDashboardRoutes(httpapi.NewDashboardHandler(authService, inventoryService, log))
	router.RegisterContactRoutes(
		httpapi.NewContactHandler(authService, contactService, log),
		httpapi.NewNotifyHandler(log),
	)
	router.RegisterHealthRoute()

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	// Fresh context: ctx is already canceled by now and would void the drain.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	_ = db.Close()
}

// seedDemo ensures the bed-type dictionary plus one hospital and a staff
// login exist, upsert-style, so fresh environments have something to show.
func seedDemo(db *sql.DB, log *zap.Logger) {
	bedTypes := []string{"ICU", "General", "Pediatric", "Emergency", "Maternity"}
	for _, name := range bedTypes {
		_, _ = db.Exec(
			`INSERT INTO bed_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		)
	}

	var hospitalID string
	err := db.QueryRow(
		`INSERT INTO hospitals (name, address, city, phone, email, emergency_available)
		 VALUES ($1, $2, $3, $4, $5, true)
		 ON CONFLICT (name) DO UPDATE SET address = EXCLUDED.address, city = EXCLUDED.city
		 RETURNING id::text`,
		"City General Hospital", "12 Main Street", "Springfield",
		"+1-555-0100", "contact@citygeneral.example",
	).Scan(&hospitalID)
	if err != nil {
		log.Warn("Seed: hospital upsert failed", zap.Error(err))
		return
	}

	_, _ = db.Exec(
		`INSERT INTO hospital_beds (hospital_id, bed_type_id, total_beds, available_beds)
		 SELECT $1, id, 10, 6 FROM bed_types WHERE name = 'ICU'
		 ON CONFLICT (hospital_id, bed_type_id) DO NOTHING`,
		hospitalID,
	)

	// Staff login: staff@citygeneral.example / ChangeMe123!
	hash, _ := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
	var accountID string
	err = db.QueryRow(
		`INSERT INTO auth_accounts (email, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING id::text`,
		"staff@citygeneral.example", hash,
	).Scan(&accountID)
	if err != nil {
		log.Warn("Seed: staff account upsert failed", zap.Error(err))
		return
	}

	_, _ = db.Exec(
		`INSERT INTO user_profiles (id, role, hospital_id, full_name)
		 VALUES ($1, 'hospital_staff', $2, 'Demo Staff')
		 ON CONFLICT (id) DO UPDATE SET role = 'hospital_staff', hospital_id = EXCLUDED.hospital_id`,
		accountID, hospitalID,
	)

	log.Info("Seeded demo data",
		zap.String("hospital_id", hospitalID),
		zap.String("staff_account", "staff@citygeneral.example"),
	)
}
