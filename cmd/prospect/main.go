package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/prospect-dedup/internal/config"
	"github.com/prospect-dedup/internal/db"
	"github.com/prospect-dedup/internal/geocode"
	"github.com/prospect-dedup/internal/ingest"
	"github.com/prospect-dedup/internal/pipeline"
	"github.com/prospect-dedup/internal/store"
	"github.com/prospect-dedup/internal/web"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "prospect",
		Short: "Prospect address standardization and deduplication",
		Long:  `Normalizes raw prospect address exports to canonical form and removes duplicate entries`,
	}

	rootCmd.AddCommand(createProcessCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createCacheCmd())
	rootCmd.AddCommand(createPingCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// buildResolver wires the geocoding lookup with its cache. Returns a nil
// resolver when lookups are disabled. The returned flush function persists
// the cache and is safe to call once at the end of a run.
func buildResolver(settings *config.Settings, noLookup bool) (geocode.Resolver, func(), error) {
	if noLookup {
		return nil, func() {}, nil
	}

	client, err := geocode.NewClient(geocode.ClientConfig{
		BaseURL:   settings.GeocoderBaseURL,
		UserAgent: settings.GeocoderUserAgent,
		Timeout:   settings.LookupTimeout,
		RateLimit: rate.Limit(settings.LookupRatePerSec),
	})
	if err != nil {
		return nil, nil, err
	}

	cache := geocode.NewCache(settings.CacheMaxEntries)
	if settings.CachePath != "" {
		if err := cache.Load(settings.CachePath); err != nil {
			log.Printf("Warning: failed to load lookup cache: %v", err)
		}
	}

	flush := func() {
		if settings.CachePath == "" {
			return
		}
		if err := cache.Save(settings.CachePath); err != nil {
			log.Printf("Warning: failed to save lookup cache: %v", err)
		}
	}
	return geocode.NewCachedResolver(client, cache), flush, nil
}

// createProcessCmd creates the process subcommand
func createProcessCmd() *cobra.Command {
	var (
		addressColumn string
		workers       int
		noLookup      bool
		persist       bool
		filterClasses bool
	)

	cmd := &cobra.Command{
		Use:   "process [filename]",
		Short: "Process a prospect export file",
		Long:  `Reads a CSV or XLSX export, standardizes every address, removes duplicates and prints the batch report`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			filename := args[0]
			settings := config.LoadSettings()
			if workers > 0 {
				settings.WorkerCount = workers
			}

			resolver, flush, err := buildResolver(settings, noLookup)
			if err != nil {
				log.Fatalf("Lookup configuration error: %v", err)
			}
			defer flush()

			records, columns, err := ingest.ReadFile(filename)
			if err != nil {
				log.Fatalf("Failed to read %s: %v", filename, err)
			}
			fmt.Printf("Loaded %d records from %s\n", len(records), filename)

			if filterClasses {
				filter := ingest.NewClassFilter(ingest.DefaultClasses())
				var stats ingest.ClassStats
				records, stats = filter.Apply(records)
				printClassStats(stats)
			}

			column, err := ingest.ResolveAddressColumn(records, columns, addressColumn)
			if err != nil {
				log.Fatalf("Failed to resolve address column: %v", err)
			}

			pipe := pipeline.New(pipeline.Config{
				Resolver:          resolver,
				Workers:           settings.WorkerCount,
				LookupConcurrency: settings.LookupConcurrency,
				LookupTimeout:     settings.LookupTimeout,
			})

			result, err := pipe.Run(context.Background(), records, column)
			if err != nil {
				log.Fatalf("Batch run failed: %v", err)
			}

			printReport(result)

			if persist {
				conn, err := db.NewConnection()
				if err != nil {
					log.Fatalf("Failed to connect to database: %v", err)
				}
				defer conn.Close()

				st := store.New(conn.DB)
				if err := st.Init(); err != nil {
					log.Fatalf("Failed to initialize schema: %v", err)
				}
				if err := st.SaveBatch(context.Background(), filename, result); err != nil {
					log.Fatalf("Failed to persist batch: %v", err)
				}
				fmt.Printf("Batch %s persisted\n", result.BatchID)
			}
		},
	}

	cmd.Flags().StringVar(&addressColumn, "address-column", "", "Column holding the address (default: Full Address, assembled from components if needed)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (default from WORKER_COUNT)")
	cmd.Flags().BoolVar(&noLookup, "no-lookup", false, "Disable the external geocoding lookup")
	cmd.Flags().BoolVar(&persist, "store", false, "Persist the batch result to Postgres")
	cmd.Flags().BoolVar(&filterClasses, "filter-classes", true, "Filter rows by valid property classes when the column is present")

	return cmd
}

// createServeCmd creates the serve subcommand
func createServeCmd() *cobra.Command {
	var (
		persist  bool
		noLookup bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			settings := config.LoadSettings()

			resolver, flush, err := buildResolver(settings, noLookup)
			if err != nil {
				log.Fatalf("Lookup configuration error: %v", err)
			}
			defer flush()

			var st *store.Store
			if persist {
				conn, err := db.NewConnection()
				if err != nil {
					log.Fatalf("Failed to connect to database: %v", err)
				}
				defer conn.Close()

				st = store.New(conn.DB)
				if err := st.Init(); err != nil {
					log.Fatalf("Failed to initialize schema: %v", err)
				}
			}

			pipe := pipeline.New(pipeline.Config{
				Resolver:          resolver,
				Workers:           settings.WorkerCount,
				LookupConcurrency: settings.LookupConcurrency,
				LookupTimeout:     settings.LookupTimeout,
			})

			webConfig := web.DefaultConfig()
			webConfig.Addr = settings.HTTPAddr

			server := web.NewServer(webConfig, pipe, st)
			if err := server.Start(); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		},
	}

	cmd.Flags().BoolVar(&persist, "store", false, "Enable batch persistence endpoints")
	cmd.Flags().BoolVar(&noLookup, "no-lookup", false, "Disable the external geocoding lookup")
	return cmd
}

// createCacheCmd creates the cache maintenance subcommand
func createCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Lookup cache maintenance",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show lookup cache statistics",
		Run: func(cmd *cobra.Command, args []string) {
			settings := config.LoadSettings()
			cache := geocode.NewCache(settings.CacheMaxEntries)
			if err := cache.Load(settings.CachePath); err != nil {
				log.Fatalf("Failed to load cache: %v", err)
			}
			stats := cache.Stats()
			fmt.Printf("Cache file: %s\n", settings.CachePath)
			fmt.Printf("Entries: %d (max %d)\n", stats.Size, settings.CacheMaxEntries)
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted lookup cache",
		Run: func(cmd *cobra.Command, args []string) {
			settings := config.LoadSettings()
			if err := os.Remove(settings.CachePath); err != nil && !os.IsNotExist(err) {
				log.Fatalf("Failed to remove cache file: %v", err)
			}
			fmt.Println("Lookup cache cleared")
		},
	})

	return cacheCmd
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			conn, err := db.NewConnection()
			if err != nil {
				log.Fatalf("Failed to connect to database: %v", err)
			}
			defer conn.Close()

			fmt.Println("Database connection successful!")

			var count int
			err = conn.DB.QueryRow("SELECT COUNT(*) FROM batch_run").Scan(&count)
			if err != nil {
				log.Printf("Error counting batch_run records: %v", err)
			} else {
				fmt.Printf("Batches stored: %d\n", count)
			}
		},
	}
}

// printClassStats prints the property-class filter summary
func printClassStats(stats ingest.ClassStats) {
	fmt.Printf("Property class filter: %d of %d records kept (%d filtered out)\n",
		stats.Kept, stats.Total, stats.FilteredOut)

	codes := make([]string, 0, len(stats.ValidCounts))
	for code := range stats.ValidCounts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("  %s - %s: %d\n", code, ingest.ClassDescription(code), stats.ValidCounts[code])
	}
	for code, count := range stats.OtherCounts {
		fmt.Printf("  excluded %s: %d\n", code, count)
	}
}

// printReport prints the batch result to stdout
func printReport(result *pipeline.BatchResult) {
	fmt.Println()
	fmt.Println(result.String())
	fmt.Println()

	for _, rep := range result.Representatives {
		marker := " "
		if rep.GroupSize > 1 {
			marker = "*"
		}
		fmt.Printf("%s [%s] %s (group of %d)\n", marker, rep.Confidence, rep.Address.Line(), rep.GroupSize)
	}

	if len(result.Failed) > 0 {
		fmt.Printf("\nFailed rows:\n")
		for _, f := range result.Failed {
			fmt.Printf("  row %d: %s (%q)\n", f.Index, f.Reason, f.Raw)
		}
	}
}
