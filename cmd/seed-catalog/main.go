package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/database"
	"github.com/sensoryplay/portal-backend/internal/logger"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
	"github.com/sensoryplay/portal-backend/internal/service"
	"gopkg.in/yaml.v3"
)

type seedClass struct {
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	Date            string   `yaml:"date"`
	Time            string   `yaml:"time"`
	DurationMinutes int      `yaml:"duration_minutes"`
	Capacity        int      `yaml:"capacity"`
	PriceCents      int      `yaml:"price_cents"`
	AgeGroup        string   `yaml:"age_group"`
	Skills          []string `yaml:"skills"`
	ImageURL        string   `yaml:"image_url"`
}

type seedLocation struct {
	Name     string      `yaml:"name"`
	Address  string      `yaml:"address"`
	City     string      `yaml:"city"`
	State    string      `yaml:"state"`
	Zip      string      `yaml:"zip"`
	ImageURL string      `yaml:"image_url"`
	Classes  []seedClass `yaml:"classes"`
}

type catalogFile struct {
	Locations []seedLocation `yaml:"locations"`
}

func loadCatalog(r io.Reader) (*catalogFile, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, l := range f.Locations {
		if l.Name == "" {
			return nil, fmt.Errorf("location #%d has no name", i+1)
		}
		for j, c := range l.Classes {
			if c.Title == "" || c.Date == "" || c.Time == "" || c.Capacity <= 0 {
				return nil, fmt.Errorf("%s: class #%d needs title, date, time and capacity", l.Name, j+1)
			}
		}
	}
	return &f, nil
}

func (l seedLocation) request() model.LocationRequest {
	return model.LocationRequest{
		Name: l.Name, Address: l.Address, City: l.City,
		State: l.State, Zip: l.Zip, ImageURL: l.ImageURL,
	}
}

func (c seedClass) request(locationID string) model.ClassRequest {
	return model.ClassRequest{
		Title:           c.Title,
		Description:     c.Description,
		Date:            c.Date,
		Time:            c.Time,
		DurationMinutes: c.DurationMinutes,
		Capacity:        c.Capacity,
		PriceCents:      c.PriceCents,
		LocationID:      locationID,
		AgeGroup:        c.AgeGroup,
		Skills:          c.Skills,
		ImageURL:        c.ImageURL,
	}
}

// seed-catalog loads locations and classes from a YAML fixture. Locations are
// matched by name and classes by title and start time, so reruns only add
// what is missing.
func main() {
	var path string
	flag.StringVar(&path, "file", "fixtures/catalog.yaml", "Path to the catalog fixture")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fh, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open catalog fixture")
	}
	catalog, err := loadCatalog(fh)
	fh.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid catalog fixture")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	locationRepo := repository.NewLocationRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	cache := service.NewRedisCatalogCache(rdb, cfg.CatalogCacheTTL, log)
	locationService := service.NewLocationService(locationRepo, classRepo, cache, log)
	classService := service.NewClassService(classRepo, locationRepo, cache, cfg.Timezone(), log)

	existing, err := locationRepo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list locations")
	}
	byName := make(map[string]model.Location, len(existing))
	for _, l := range existing {
		byName[l.Name] = l
	}

	createdLocations, createdClasses := 0, 0
	for _, sl := range catalog.Locations {
		loc, ok := byName[sl.Name]
		if !ok {
			created, err := locationService.Create(ctx, sl.request())
			if err != nil {
				log.Fatal().Err(err).Str("location", sl.Name).Msg("Failed to create location")
			}
			loc = *created
			createdLocations++
		}

		current, err := classRepo.List(ctx, model.ClassFilter{LocationID: &loc.ID})
		if err != nil {
			log.Fatal().Err(err).Str("location", sl.Name).Msg("Failed to list classes")
		}

		for _, sc := range sl.Classes {
			startsAt, err := classService.StartTime(sc.Date, sc.Time)
			if err != nil {
				log.Fatal().Err(err).Str("class", sc.Title).Msg("Invalid class schedule")
			}
			if hasClass(current, sc.Title, startsAt) {
				continue
			}
			if _, err := classService.Create(ctx, sc.request(loc.ID.String())); err != nil {
				log.Fatal().Err(err).Str("class", sc.Title).Msg("Failed to create class")
			}
			createdClasses++
		}
	}

	fmt.Printf("Seeded %d locations and %d classes\n", createdLocations, createdClasses)
}

func hasClass(classes []model.Class, title string, startsAt time.Time) bool {
	for _, c := range classes {
		if c.Title == title && c.StartsAt.Equal(startsAt) {
			return true
		}
	}
	return false
}
