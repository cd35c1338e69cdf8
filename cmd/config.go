package cmd

import (
	"fmt"

	"db-reconcile/internal/dialect"
	"db-reconcile/internal/reconcile"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name    string `mapstructure:"name"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	Dialect string `mapstructure:"dialect"`
	Schema  string `mapstructure:"schema"`
	Active  bool   `mapstructure:"active"`
}

// IndexActionConfig declares a statement that replaces the generic CREATE
// INDEX for one index. Statements are keyed by dialect name.
type IndexActionConfig struct {
	Name       string            `mapstructure:"name"`
	Entity     string            `mapstructure:"entity"`
	Index      string            `mapstructure:"index"`
	Statements map[string]string `mapstructure:"statements"`
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// CheckOptions reads the check section.
func CheckOptions() reconcile.Options {
	return reconcile.Options{
		AddMissing:                viper.GetBool("check.add_missing"),
		Promote:                   viper.GetBool("check.promote"),
		Widen:                     viper.GetBool("check.widen"),
		CheckForeignKeys:          viper.GetBool("check.foreign_keys"),
		CheckFKIndexes:            viper.GetBool("check.fk_indexes"),
		CheckIndexes:              viper.GetBool("check.indexes"),
		CreateForeignKeysOnCreate: viper.GetBool("check.foreign_keys_on_create"),
		CreateFKIndexesOnCreate:   viper.GetBool("check.fk_indexes_on_create"),
		CreateIndexesOnCreate:     viper.GetBool("check.indexes_on_create"),
		UseInlineForeignKeys:      viper.GetBool("check.inline_fks"),
	}
}

// IndexActions builds the configured index actions that have a statement
// for dialect d. Actions for other dialects are left out.
func IndexActions(d *dialect.Dialect) ([]reconcile.IndexAction, error) {
	var configs []IndexActionConfig
	if err := viper.UnmarshalKey("check.index_actions", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse check.index_actions: %w", err)
	}
	var actions []reconcile.IndexAction
	for _, c := range configs {
		if c.Entity == "" || c.Index == "" {
			return nil, fmt.Errorf("index action %q needs an entity and an index", c.Name)
		}
		stmt, ok := c.Statements[d.Name]
		if !ok {
			continue
		}
		name := c.Name
		if name == "" {
			name = c.Entity + "." + c.Index
		}
		actions = append(actions, &reconcile.TemplateIndexAction{
			ActionName: name,
			EntityName: c.Entity,
			Index:      c.Index,
			Statement:  dialect.Template(stmt),
		})
	}
	return actions, nil
}

func init() {
	defaults := reconcile.DefaultOptions()
	viper.SetDefault("check.add_missing", defaults.AddMissing)
	viper.SetDefault("check.promote", defaults.Promote)
	viper.SetDefault("check.widen", defaults.Widen)
	viper.SetDefault("check.foreign_keys", defaults.CheckForeignKeys)
	viper.SetDefault("check.fk_indexes", defaults.CheckFKIndexes)
	viper.SetDefault("check.indexes", defaults.CheckIndexes)
	viper.SetDefault("check.foreign_keys_on_create", defaults.CreateForeignKeysOnCreate)
	viper.SetDefault("check.fk_indexes_on_create", defaults.CreateFKIndexesOnCreate)
	viper.SetDefault("check.indexes_on_create", defaults.CreateIndexesOnCreate)
	viper.SetDefault("check.inline_fks", defaults.UseInlineForeignKeys)
}
