// Утилита пакетного импорта членств из CSV-файла. Настраивается
// переменными окружения; ошибки отдельных строк не прерывают импорт.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/services/importer"
	"github.com/magabrotheeeer/membership-gate/internal/storage/repository"
)

type importConfig struct {
	StorageConnectionString string `env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	ImportFile              string `env:"IMPORT_FILE" env-default:"./memberships.csv"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var cfg importConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		logger.Error("failed to read environment", sl.Err(err))
		os.Exit(1)
	}

	file, err := os.Open(cfg.ImportFile)
	if err != nil {
		logger.Error("failed to open import file", slog.String("path", cfg.ImportFile), sl.Err(err))
		os.Exit(1)
	}
	defer file.Close()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect storage", sl.Err(err))
		os.Exit(1)
	}
	defer db.DB.Close()

	// общая дата старта для всех импортированных членств
	startDate := time.Date(2025, 10, 14, 0, 0, 0, 0, time.FixedZone("CST", -6*3600))

	service := importer.NewImporterService(db, logger)
	stats, err := service.Run(context.Background(), file, startDate)
	if err != nil {
		logger.Error("import failed", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("import completed",
		slog.Int("success", stats.Success),
		slog.Int("errors", stats.Errors),
		slog.Int("total", stats.Total()))
	for planType, count := range stats.ByPlan {
		logger.Info("plan distribution", slog.String("plan", string(planType)), slog.Int("count", count))
	}
}
