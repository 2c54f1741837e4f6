package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"doctemplates/internal/config"
	"doctemplates/internal/logging"
	"doctemplates/internal/service"
	"doctemplates/internal/storage"
	"doctemplates/internal/storage/providers"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// importer loads every template archive from a directory into the
// repository used by the server.
func main() {
	var configPath, sourcePath string
	flag.StringVar(&configPath, "config", "", "Path to the config file")
	flag.StringVar(&sourcePath, "source", "", "Directory with template .zip archives")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		panic("config path is required")
	}
	if sourcePath == "" {
		panic("source is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}
	logger := logging.Setup(cfg.Env)

	files, err := storage.NewLocal(cfg.Storage.TemplatesPath)
	if err != nil {
		panic(err)
	}
	tmp, err := storage.NewLocal(cfg.Storage.TmpPath)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	allProviders := providers.New(files, tmp, providers.WithSetupWorkers(cfg.Storage.SetupWorkers))
	if err := allProviders.TemplateProvider.SetupCache(ctx); err != nil {
		logger.Warn("some templates failed to load", "err", err)
	}
	templates := service.NewTemplateService(allProviders.TemplateProvider)

	failed, err := importDir(ctx, afero.NewOsFs(), sourcePath, tmp, templates)
	if err != nil {
		panic(err)
	}
	if failed > 0 {
		fmt.Printf("%d archives failed to import\n", failed)
		os.Exit(1)
	}
	fmt.Println("Templates imported")
}

// importDir imports each *.zip file of dir and returns the number of
// archives that were rejected.
func importDir(ctx context.Context, fs afero.Fs, dir string, tmp storage.Storage, templates *service.TemplateService) (int, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			continue
		}
		data, err := afero.ReadFile(fs, filepath.Join(dir, entry.Name()))
		if err != nil {
			return failed, err
		}
		staged, err := tmp.SaveFile(uuid.NewString()+".zip", data)
		if err != nil {
			return failed, err
		}

		template, err := templates.ImportTemplateFile(ctx, staged)
		switch {
		case errors.Is(err, providers.ErrDuplication):
			fmt.Printf("%s: skipped, already imported\n", entry.Name())
		case err != nil:
			failed++
			fmt.Printf("%s: %v\n", entry.Name(), err)
		default:
			fmt.Printf("%s: imported %s (%s) with %d versions\n",
				entry.Name(), template.ID(), template.Title(), len(template.VersionTags()))
		}
	}
	return failed, nil
}
