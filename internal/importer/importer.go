// file: internal/importer/importer.go
// version: 1.1.0
// guid: 01b35146-22f4-42d9-85d0-709518537a68

package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"github.com/jdfalk/medication-identifier/internal/database"
	"github.com/jdfalk/medication-identifier/internal/metrics"
	"github.com/jdfalk/medication-identifier/internal/models"
)

// SeedRecord is one medication entry in a seed file. Flat on purpose so
// seed files stay easy to write by hand.
type SeedRecord struct {
	Name             string   `yaml:"name" json:"name"`
	GenericName      string   `yaml:"generic_name" json:"generic_name"`
	BrandNames       []string `yaml:"brand_names" json:"brand_names"`
	ActiveIngredient string   `yaml:"active_ingredient" json:"active_ingredient"`
	Dosage           string   `yaml:"dosage" json:"dosage"`
	Color            string   `yaml:"color" json:"color"`
	Shape            string   `yaml:"shape" json:"shape"`
	ExternalCode     string   `yaml:"external_code" json:"external_code"`
	Notes            string   `yaml:"notes" json:"notes"`
}

// SeedFile is the top-level seed document.
type SeedFile struct {
	Records []SeedRecord `yaml:"records" json:"records"`
}

// Result summarizes one import run.
type Result struct {
	Created int
	Updated int
	Failed  int
}

// Importer loads seed files into a record store.
type Importer struct {
	store database.Store
	// Quiet disables the progress bar (used in serve mode where the
	// watcher triggers reimports).
	Quiet bool
}

// New creates an Importer for the given store.
func New(store database.Store) *Importer {
	return &Importer{store: store}
}

// ImportFile reads a YAML or JSON seed file and upserts its records.
// Records with an external code matching an existing record update it;
// everything else is created fresh.
func (im *Importer) ImportFile(path string) (*Result, error) {
	seed, err := loadSeedFile(path)
	if err != nil {
		metrics.IncSeedImport("error")
		return nil, err
	}
	result := im.importRecords(seed.Records)
	metrics.IncSeedImport("ok")
	if count, err := im.store.CountRecords(); err == nil {
		metrics.SetRecords(count)
	}
	return result, nil
}

func loadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse JSON seed file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("failed to parse YAML seed file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q (want .yaml, .yml, or .json)", filepath.Ext(path))
	}

	if len(seed.Records) == 0 {
		return nil, errors.New("seed file contains no records")
	}
	return &seed, nil
}

func (im *Importer) importRecords(seeds []SeedRecord) *Result {
	var bar *progressbar.ProgressBar
	if !im.Quiet {
		bar = progressbar.Default(int64(len(seeds)))
	}

	result := &Result{}
	for _, seed := range seeds {
		if bar != nil {
			bar.Add(1)
		}
		if err := im.upsert(seed, result); err != nil {
			result.Failed++
			log.Printf("[WARN] failed to import record %q: %v", seed.Name, err)
		}
	}
	return result
}

func (im *Importer) upsert(seed SeedRecord, result *Result) error {
	rec := seed.toRecord()

	if seed.ExternalCode != "" {
		if existing, err := im.store.GetRecordByCode(seed.ExternalCode); err == nil {
			if _, err := im.store.UpdateRecord(existing.ID, rec); err != nil {
				return err
			}
			result.Updated++
			return nil
		} else if !errors.Is(err, database.ErrNotFound) {
			return err
		}
	}

	if _, err := im.store.CreateRecord(rec); err != nil {
		return err
	}
	result.Created++
	return nil
}

func (seed SeedRecord) toRecord() *models.Record {
	rec := &models.Record{Name: seed.Name}
	md := models.RecordMetadata{
		GenericName:      seed.GenericName,
		BrandNames:       seed.BrandNames,
		ActiveIngredient: seed.ActiveIngredient,
		Dosage:           seed.Dosage,
		Color:            seed.Color,
		Shape:            seed.Shape,
		ExternalCode:     seed.ExternalCode,
		Notes:            seed.Notes,
	}
	if !md.Empty() {
		rec.Metadata = &md
	}
	return rec
}
