// file: cmd/root.go
// version: 1.1.0
// guid: 453a5f3b-8a07-49c3-a80b-ef48962094cd

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/medication-identifier/internal/ai"
	"github.com/jdfalk/medication-identifier/internal/config"
	"github.com/jdfalk/medication-identifier/internal/database"
	"github.com/jdfalk/medication-identifier/internal/importer"
	"github.com/jdfalk/medication-identifier/internal/matcher"
	"github.com/jdfalk/medication-identifier/internal/models"
	"github.com/jdfalk/medication-identifier/internal/server"
	"github.com/jdfalk/medication-identifier/internal/watcher"
)

var cfgFile string
var databasePath string
var databaseType string
var enableSQLite bool
var seedFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "medication-identifier",
	Short: "Identify medications from captured text, barcodes, and visual traits",
	Long: `Medication Identifier matches noisy capture signals (recognized text,
barcode payloads, pill color and shape) against a local medication
database and returns ranked candidates.

Records are stored locally; capture signals are never persisted.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the identification API server",
	Long:  `Start the HTTP server exposing identification, record management, and capture-session endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath, config.AppConfig.EnableSQLite); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseStore()

		fmt.Printf("Using database: %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)

		// Optional one-shot seed import before serving.
		if config.AppConfig.SeedFile != "" {
			im := importer.New(database.GlobalStore)
			im.Quiet = true
			if result, err := im.ImportFile(config.AppConfig.SeedFile); err != nil {
				fmt.Printf("Warning: seed import failed: %v\n", err)
			} else {
				fmt.Printf("Seed import: %d created, %d updated, %d failed\n", result.Created, result.Updated, result.Failed)
			}

			if config.AppConfig.WatchSeed {
				w := watcher.New(func(path string) {
					im := importer.New(database.GlobalStore)
					im.Quiet = true
					if result, err := im.ImportFile(path); err != nil {
						log.Printf("[WARN] seed reimport failed: %v", err)
					} else {
						log.Printf("[INFO] seed reimport: %d created, %d updated, %d failed",
							result.Created, result.Updated, result.Failed)
					}
				}, 0)
				if err := w.Start(config.AppConfig.SeedFile); err != nil {
					fmt.Printf("Warning: could not watch seed file: %v\n", err)
				} else {
					defer w.Stop()
					fmt.Printf("Watching seed file: %s\n", config.AppConfig.SeedFile)
				}
			}
		}

		srv := server.NewServer()
		cfg := server.GetDefaultServerConfig()

		if port := cmd.Flag("port").Value.String(); port != "" {
			cfg.Port = port
		}
		if host := cmd.Flag("host").Value.String(); host != "" {
			cfg.Host = host
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		return srv.Start(cfg)
	},
}

// identifyCmd represents the identify command
var identifyCmd = &cobra.Command{
	Use:   "identify [text fragments...]",
	Short: "Identify a medication from the command line",
	Long: `Run the identification pipeline once against the local database.
Positional arguments are treated as recognized text fragments; a barcode
payload can be supplied with --code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")
		color, _ := cmd.Flags().GetString("color")
		shape, _ := cmd.Flags().GetString("shape")
		signalsFile, _ := cmd.Flags().GetString("signals-file")
		useAI, _ := cmd.Flags().GetBool("ai")
		asJSON, _ := cmd.Flags().GetBool("json")

		var signals models.QuerySignals
		if signalsFile != "" {
			data, err := os.ReadFile(signalsFile)
			if err != nil {
				return fmt.Errorf("failed to read signals file: %w", err)
			}
			if err := json.Unmarshal(data, &signals); err != nil {
				return fmt.Errorf("failed to parse signals file: %w", err)
			}
		}

		// Flags and positional fragments layer on top of the file.
		if code != "" {
			signals.ExternalCode = code
		}
		if color != "" {
			signals.Color = color
		}
		if shape != "" {
			signals.Shape = shape
		}
		for _, arg := range args {
			signals.Texts = append(signals.Texts, models.RecognizedText{Text: arg, Confidence: 1.0})
		}
		if signals.Empty() {
			return fmt.Errorf("no signals given: pass text fragments, --code, --color, --shape, or --signals-file")
		}
		if err := signals.Validate(); err != nil {
			return fmt.Errorf("invalid signals: %w", err)
		}

		if err := database.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath, config.AppConfig.EnableSQLite); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseStore()

		if useAI {
			suggester := ai.NewOpenAISuggester(config.AppConfig.APIKeys.OpenAI, config.AppConfig.AIEnabled)
			if suggester.IsEnabled() {
				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				defer cancel()
				if suggested, err := suggester.SuggestTerms(ctx, args); err == nil {
					signals.AITerms = suggested.Terms
				} else {
					fmt.Printf("Warning: AI suggestion failed: %v\n", err)
				}
			} else {
				fmt.Println("Warning: AI is not enabled (set ai_enabled and api_keys.openai)")
			}
		}

		candidates, err := database.GlobalStore.GetAllRecords(0, 0)
		if err != nil {
			return fmt.Errorf("failed to load records: %w", err)
		}

		params := matcher.DefaultParams()
		params.MinRelevance = config.AppConfig.Matcher.MinRelevance
		params.MaxResults = config.AppConfig.Matcher.MaxResults
		params.FuzzyCutoff = config.AppConfig.Matcher.FuzzyCutoff
		params.MinConfidence = config.AppConfig.Matcher.MinConfidence

		results := matcher.New(params).Identify(signals, candidates)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for i, r := range results {
			fmt.Printf("%2d. %-30s %.3f\n", i+1, r.Record.Name, r.Score)
		}
		return nil
	},
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <seed-file>",
	Short: "Import medication records from a YAML or JSON seed file",
	Long: `Bulk-load records from a seed file. Records whose external code
matches an existing record are updated in place; everything else is
created.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath, config.AppConfig.EnableSQLite); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseStore()

		fmt.Printf("Using database: %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)
		fmt.Printf("Importing seed file: %s\n", args[0])

		result, err := importer.New(database.GlobalStore).ImportFile(args[0])
		if err != nil {
			return fmt.Errorf("import error: %w", err)
		}

		fmt.Printf("Import complete: %d created, %d updated, %d failed\n",
			result.Created, result.Updated, result.Failed)
		return nil
	},
}

// recordsCmd represents the records command
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect and maintain medication records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List medication records",
	Long:  `List records in the local database, optionally filtered by a search term.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		if err := database.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath, config.AppConfig.EnableSQLite); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseStore()

		var (
			records []models.Record
			err     error
		)
		if search != "" {
			records, err = database.GlobalStore.SearchRecords(search, limit, 0)
		} else {
			records, err = database.GlobalStore.GetAllRecords(limit, 0)
		}
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No records.")
			return nil
		}
		for _, rec := range records {
			code := rec.ExternalCode()
			if code == "" {
				code = "-"
			}
			fmt.Printf("%s  %-30s %s\n", rec.ID, rec.Name, code)
		}
		fmt.Printf("%d record(s)\n", len(records))
		return nil
	},
}

var recordsShowCmd = &cobra.Command{
	Use:   "show <id-or-code>",
	Short: "Show one record as JSON",
	Long:  `Look up a record by its ULID, or by external code when the argument is not a ULID.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath, config.AppConfig.EnableSQLite); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseStore()

		rec, err := lookupRecord(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <id-or-code>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath, config.AppConfig.EnableSQLite); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseStore()

		rec, err := lookupRecord(args[0])
		if err != nil {
			return err
		}
		if err := database.GlobalStore.DeleteRecord(rec.ID); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		fmt.Printf("Deleted %s (%s)\n", rec.Name, rec.ID)
		return nil
	},
}

// lookupRecord resolves a CLI argument to a record, trying the ULID
// first and falling back to the external-code index.
func lookupRecord(arg string) (*models.Record, error) {
	rec, err := database.GlobalStore.GetRecordByID(arg)
	if err == nil {
		return rec, nil
	}
	rec, err = database.GlobalStore.GetRecordByCode(arg)
	if err != nil {
		return nil, fmt.Errorf("no record with id or code %q", arg)
	}
	return rec, nil
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.medication-identifier.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "medications.pebble", "path to database (default: medications.pebble for PebbleDB)")
	rootCmd.PersistentFlags().StringVar(&databaseType, "db-type", "pebble", "database type: pebble (default) or sqlite")
	rootCmd.PersistentFlags().BoolVar(&enableSQLite, "enable-sqlite3-i-know-the-risks", false, "enable SQLite3 database (WARNING: cross-compilation issues, PebbleDB recommended)")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed", "", "YAML/JSON seed file imported before serving")

	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("database_type", rootCmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("enable_sqlite3_i_know_the_risks", rootCmd.PersistentFlags().Lookup("enable-sqlite3-i-know-the-risks"))
	viper.BindPFlag("seed_file", rootCmd.PersistentFlags().Lookup("seed"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(recordsCmd)

	serveCmd.Flags().String("port", "8080", "port to run the web server on")
	serveCmd.Flags().String("host", "localhost", "host to bind the web server to")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
	serveCmd.Flags().Bool("watch-seed", false, "reimport the seed file when it changes")
	viper.BindPFlag("watch_seed", serveCmd.Flags().Lookup("watch-seed"))

	identifyCmd.Flags().String("code", "", "barcode payload (external code)")
	identifyCmd.Flags().String("signals-file", "", "JSON file holding a full signals bundle")
	identifyCmd.Flags().String("color", "", "pill color")
	identifyCmd.Flags().String("shape", "", "pill shape")
	identifyCmd.Flags().Bool("ai", false, "clean up text fragments with the AI suggester first")
	identifyCmd.Flags().Bool("json", false, "print results as JSON")

	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
	recordsListCmd.Flags().String("search", "", "substring filter over names and brands")
	recordsListCmd.Flags().Int("limit", 50, "maximum records to list")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".medication-identifier")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// Ensure database directory exists
	if databasePath != "" {
		dbDir := filepath.Dir(databasePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				fmt.Printf("Error creating database directory: %v\n", err)
			}
		}
	}

	config.InitConfig()
}
