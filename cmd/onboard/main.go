// Command onboard loads client records from a YAML file into the store.
// Onboarding happens out of band; the coordinator only ever reads clients.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/shared"
	mysqlrepo "reviewdesk/internal/storage/mysql"
)

type clientSpec struct {
	PhoneNumber      string `yaml:"phone_number"`
	SourceLocationID string `yaml:"source_location_id"`
	BusinessName     string `yaml:"business_name"`
	LanguagePref     string `yaml:"language_preference"`
	OfferPolicy      string `yaml:"offer_policy"`
}

func main() {
	file := flag.String("file", "clients.yaml", "YAML file with client records")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Str("file", *file).Err(err).Msg("read clients file failed")
	}
	var specs []clientSpec
	if err := yaml.Unmarshal(raw, &specs); err != nil {
		log.Fatal().Str("file", *file).Err(err).Msg("parse clients file failed")
	}
	if len(specs) == 0 {
		log.Fatal().Str("file", *file).Msg("no client records in file")
	}
	log.Info().Int("clients", len(specs)).Int("workers", cfg.OnboardWorkers).Msg("onboarding starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	sem := semaphore.NewWeighted(int64(cfg.OnboardWorkers))
	var wg sync.WaitGroup

	for _, spec := range specs {
		spec := spec
		if spec.PhoneNumber == "" || spec.SourceLocationID == "" {
			log.Warn().Str("business", spec.BusinessName).Msg("skipping record without phone or location")
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			lang := spec.LanguagePref
			if lang == "" {
				lang = "en"
			}
			err := repo.UpsertClient(ctx, domain.Client{
				PhoneNumber:      spec.PhoneNumber,
				SourceLocationID: spec.SourceLocationID,
				BusinessName:     spec.BusinessName,
				LanguagePref:     lang,
				OfferPolicy:      spec.OfferPolicy,
			})
			if err != nil {
				log.Warn().Str("location", spec.SourceLocationID).Err(err).Msg("onboard failed")
				return
			}
			log.Info().Str("location", spec.SourceLocationID).Str("business", spec.BusinessName).Msg("onboard ok")
		}()
	}

	wg.Wait()
	log.Info().Msg("onboarding completed")
}
