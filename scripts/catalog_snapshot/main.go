package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/repository"
	"github.com/noah-isme/it-hub-api/internal/store"
	"github.com/noah-isme/it-hub-api/pkg/config"
	"github.com/noah-isme/it-hub-api/pkg/logger"
)

// dump mirrors a browser localStorage export: every value is a JSON document
// serialized into a string.
type dump map[string]string

func main() {
	var (
		mode    string
		path    string
		dryRun  bool
		timeout time.Duration
	)

	flag.StringVar(&mode, "mode", "import", "import or export")
	flag.StringVar(&path, "file", "it_hub_dump.json", "Path of the localStorage dump")
	flag.BoolVar(&dryRun, "dry-run", false, "Decode the dump and report counts without writing")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	backend, err := store.Open(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open storage backend", zap.Error(err))
	}
	defer backend.Close() //nolint:errcheck

	catalog := repository.NewCatalogStore(backend, repository.DefaultKeys(cfg.Storage.KeyPrefix), logr)

	switch mode {
	case "import":
		err = runImport(ctx, catalog, path, dryRun, logr)
	case "export":
		err = runExport(ctx, catalog, path)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		logr.Fatal("snapshot failed", zap.String("mode", mode), zap.Error(err))
	}
}

func runImport(ctx context.Context, catalog *repository.CatalogStore, path string, dryRun bool, logr *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var raw dump
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode dump: %w", err)
	}

	snap, current, err := decodeDump(raw, catalog.Keys())
	if err != nil {
		return err
	}
	logr.Info("dump decoded",
		zap.Int("subjects", len(snap.Subjects)),
		zap.Int("files", len(snap.Files)),
		zap.Int("requests", len(snap.Requests)),
		zap.Int("users", len(snap.Users)),
		zap.Bool("session", current != nil),
	)
	if dryRun {
		return nil
	}

	if err := catalog.Restore(ctx, snap); err != nil {
		return err
	}
	if current != nil {
		if err := catalog.Login(ctx, *current); err != nil {
			return err
		}
	}
	return catalog.EnsureInitialized(ctx)
}

func runExport(ctx context.Context, catalog *repository.CatalogStore, path string) error {
	snap, err := catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	current, err := catalog.CurrentUser(ctx)
	if err != nil {
		return err
	}
	raw, err := encodeDump(snap, current, catalog.Keys())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// decodeDump unpacks the known slots. Slots missing from the dump stay nil so
// Restore leaves them untouched.
func decodeDump(raw dump, keys repository.Keys) (repository.Snapshot, *models.User, error) {
	var snap repository.Snapshot
	if err := decodeSlot(raw, keys.Subjects, &snap.Subjects); err != nil {
		return snap, nil, err
	}
	if err := decodeSlot(raw, keys.Files, &snap.Files); err != nil {
		return snap, nil, err
	}
	if err := decodeSlot(raw, keys.Requests, &snap.Requests); err != nil {
		return snap, nil, err
	}
	if err := decodeSlot(raw, keys.Users, &snap.Users); err != nil {
		return snap, nil, err
	}

	var current *models.User
	if value, ok := raw[keys.CurrentUser]; ok && value != "" && value != "null" {
		current = &models.User{}
		if err := json.Unmarshal([]byte(value), current); err != nil {
			return snap, nil, fmt.Errorf("decode %s: %w", keys.CurrentUser, err)
		}
	}
	return snap, current, nil
}

func decodeSlot[T any](raw dump, key string, dst *[]T) error {
	value, ok := raw[key]
	if !ok || value == "" {
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	*dst = items
	return nil
}

func encodeDump(snap repository.Snapshot, current *models.User, keys repository.Keys) (dump, error) {
	out := dump{}
	slots := []struct {
		key   string
		value interface{}
	}{
		{keys.Subjects, snap.Subjects},
		{keys.Files, snap.Files},
		{keys.Requests, snap.Requests},
		{keys.Users, snap.Users},
	}
	for _, slot := range slots {
		encoded, err := json.Marshal(slot.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", slot.key, err)
		}
		out[slot.key] = string(encoded)
	}
	if current != nil {
		encoded, err := json.Marshal(current)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", keys.CurrentUser, err)
		}
		out[keys.CurrentUser] = string(encoded)
	}
	return out, nil
}
