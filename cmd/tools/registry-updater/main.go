// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/prediction"
	predictcropyield "github.com/Tesis-SiembraSmart/api-modelos/internal/workers/prediction/predict-crop-yield"
	"github.com/Tesis-SiembraSmart/api-modelos/pkg/registry"
)

const defaultCatalogPath = "configs/crop-catalog.json"

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	configPath := generateCmd.String("config", "", "Path to config file (defaults to configs/config.yaml lookup)")
	outPath := generateCmd.String("out", defaultCatalogPath, "Path of the catalog file to write")

	validatePath := validateCmd.String("path", defaultCatalogPath, "Path to catalog file")
	showPath := showCmd.String("path", defaultCatalogPath, "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		_ = generateCmd.Parse(os.Args[2:])
		cat, err := generate(*configPath)
		if err != nil {
			fmt.Printf("Error generating catalog: %v\n", err)
			os.Exit(1)
		}
		if err := registry.SaveCatalog(cat, *outPath); err != nil {
			fmt.Printf("Error writing catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d crops to %s\n", len(cat.Crops), *outPath)

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		if err := validate(*validatePath); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		_ = showCmd.Parse(os.Args[2:])
		cat, err := registry.LoadCatalog(*showPath)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		for _, crop := range cat.Crops {
			fmt.Printf("%-6s %-6s shape=%-5s arity=%-2d fields=%s\n",
				crop.ID, crop.Label, crop.Shape, crop.VectorArity, strings.Join(crop.RequiredFields, ","))
		}

	case "help":
		help()
	default:
		help()
		os.Exit(1)
	}
}

// generate builds the catalog for the crops enabled in the configuration.
func generate(configPath string) (*registry.CropCatalog, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromFile(configPath)
	}
	if err != nil {
		return nil, err
	}

	profiles, err := prediction.NewRegistryFromShapes(prediction.ShapesFromConfig(cfg.Models))
	if err != nil {
		return nil, err
	}

	cat, err := prediction.Catalog(profiles.Profiles(), nil)
	if err != nil {
		return nil, err
	}
	if cfg.Camunda.Enabled {
		cat.TaskType = predictcropyield.TaskType
	}
	return cat, registry.Validate(cat)
}

// validate checks the file on its own and against the built-in profiles.
func validate(path string) error {
	cat, err := registry.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := registry.Validate(cat); err != nil {
		return err
	}

	for _, crop := range cat.Crops {
		p, err := prediction.BuildProfile(crop.ID, prediction.Shape(crop.Shape))
		if err != nil {
			return fmt.Errorf("crop %s: %w", crop.ID, err)
		}
		if p.Arity() != crop.VectorArity {
			return fmt.Errorf("crop %s: catalog arity %d, profile arity %d", crop.ID, crop.VectorArity, p.Arity())
		}
		if strings.Join(p.Fields(), ",") != strings.Join(crop.RequiredFields, ",") {
			return fmt.Errorf("crop %s: required fields differ from the built-in profile", crop.ID)
		}
	}

	fmt.Printf("Catalog validation passed. Found %d crops.\n", len(cat.Crops))
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  generate  Build the crop catalog from the service configuration
  validate  Validate a catalog file against the built-in crop profiles
  show      Print a summary of a catalog file
  help      Show this help message

Examples:
  registry-updater generate -config configs/config.yaml -out configs/crop-catalog.json
  registry-updater validate -path configs/crop-catalog.json
  registry-updater show

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
