// Command seed creates or refreshes groups from a YAML file. Groups cannot
// be created through the site.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/pkg/config"
	"gopkg.in/yaml.v3"
)

type groupsFile struct {
	Groups []models.Group `yaml:"groups"`
}

func loadGroups(path string) ([]models.Group, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f groupsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, g := range f.Groups {
		if g.Slug == "" || g.Title == "" {
			return nil, fmt.Errorf("group %d: title and slug are required", i+1)
		}
	}
	return f.Groups, nil
}

func main() {
	path := flag.String("groups", "groups.yaml", "YAML file with the groups to upsert")
	flag.Parse()

	groups, err := loadGroups(*path)
	if err != nil {
		log.Fatalf("Failed to load groups: %v", err)
	}

	cfg := config.Load()
	cfg.PostStore = config.PostStorePostgres // groups always live in PostgreSQL
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	repo := repositories.NewPostgresGroupRepository(db.Postgres)
	ctx := context.Background()
	for i := range groups {
		if err := repo.UpsertGroup(ctx, &groups[i]); err != nil {
			log.Fatalf("Failed to upsert group %s: %v", groups[i].Slug, err)
		}
		log.Printf("Group %q (%s) saved.", groups[i].Title, groups[i].Slug)
	}
}
