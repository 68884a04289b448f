// Package seed loads baseline editions and aliases from a YAML file.
// Seeding is administrative: the pipeline itself never creates
// editions or aliases.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/towndigest/towndigest/internal/model"
	"github.com/towndigest/towndigest/internal/store"
)

// EditionSeed is one edition entry in a seed file, with the alias
// addresses bound to it.
type EditionSeed struct {
	Name        string   `mapstructure:"name"`
	Slug        string   `mapstructure:"slug"`
	State       string   `mapstructure:"state"`
	Description string   `mapstructure:"description"`
	Aliases     []string `mapstructure:"aliases"`
}

// File is the parsed contents of a seed file.
type File struct {
	Editions []EditionSeed `mapstructure:"editions"`
}

// Result reports how many rows a seed run created.
type Result struct {
	EditionsCreated int
	AliasesCreated  int
}

// Load reads and parses a YAML seed file.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	return &f, nil
}

// Apply creates the editions and aliases of a seed file. It aborts with
// an error if any slug or alias address already exists.
func Apply(ctx context.Context, st store.Store, f *File) (*Result, error) {
	result := &Result{}

	for _, es := range f.Editions {
		if es.Slug == "" {
			return result, errors.New("seed aborted: edition without a slug")
		}

		_, err := st.GetEditionBySlug(ctx, es.Slug)
		if err == nil {
			return result, fmt.Errorf("seed aborted: edition with slug %q already exists", es.Slug)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return result, err
		}

		edition := &model.Edition{
			Name:        es.Name,
			Slug:        es.Slug,
			State:       es.State,
			Description: es.Description,
		}
		if err := st.CreateEdition(ctx, edition); err != nil {
			return result, err
		}
		result.EditionsCreated++

		for _, address := range es.Aliases {
			existing, err := st.FindAliasByAddresses(ctx, []string{address})
			if err != nil {
				return result, err
			}
			if existing != nil {
				return result, fmt.Errorf("seed aborted: email alias %q already exists", address)
			}

			alias := &model.EmailAlias{
				EditionID: edition.ID,
				Address:   address,
			}
			if err := st.CreateAlias(ctx, alias); err != nil {
				return result, err
			}
			result.AliasesCreated++
		}
	}

	return result, nil
}
