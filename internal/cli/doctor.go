package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/seuros/jogo/internal/config"
	"github.com/seuros/jogo/internal/database"
	"github.com/seuros/jogo/internal/geoip"
	"github.com/seuros/jogo/internal/store"
)

// expectedMigrationVersion is the newest embedded migration.
const expectedMigrationVersion = uint(1)

const minPostgresMajor = 13

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on a Jogo installation",
	Long: `Run health checks on a Jogo installation.

Checks performed:
  - Configuration valid
  - Data directory writable
  - GeoIP database exists
  - Store reachable
  - Template catalogue seeded
  - PostgreSQL version ≥13 (postgres driver)
  - Database migrations completed (postgres driver)
  - Required tables exist (postgres driver)

Example:
  jogo doctor
  jogo doctor --json`,
	RunE: runDoctor,
}

type CheckResult struct {
	Name       string `json:"name"`
	Pass       bool   `json:"pass"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

var requiredTables = []string{
	"users",
	"template",
	"funnel",
	"analytics_snapshot",
	"analytics_breakdown",
}

func checkConfiguration(cfg *config.Config) CheckResult {
	if err := cfg.Validate(); err != nil {
		return CheckResult{
			Name:       "Configuration",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Set the missing values in jogo.toml or the environment",
		}
	}
	return CheckResult{Name: "Configuration", Pass: true, Details: "driver " + cfg.StoreDriver}
}

func checkDataDirectory(cfg *config.Config) CheckResult {
	testFile := filepath.Join(cfg.DataDir, ".jogo-write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return CheckResult{
			Name:       "Data Directory Writable",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Ensure DATA_DIR exists and has write permissions",
		}
	}
	_ = os.Remove(testFile)
	return CheckResult{Name: "Data Directory Writable", Pass: true}
}

func checkGeoIPDatabase(cfg *config.Config) CheckResult {
	geoipPath := geoip.Path(cfg.DataDir)

	info, err := os.Stat(geoipPath)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:       "GeoIP Database",
				Pass:       false,
				Error:      geoip.DatabaseFile + " not found",
				Suggestion: "Database will auto-download on first server start; countries report Unknown until then",
			}
		}
		return CheckResult{Name: "GeoIP Database", Pass: false, Error: err.Error()}
	}

	file, err := os.Open(geoipPath)
	if err != nil {
		return CheckResult{
			Name:       "GeoIP Database",
			Pass:       false,
			Error:      "Cannot read " + geoip.DatabaseFile,
			Suggestion: "Check file permissions",
		}
	}
	_ = file.Close()

	return CheckResult{
		Name:    "GeoIP Database",
		Pass:    true,
		Details: fmt.Sprintf("%.1f MB", float64(info.Size())/(1024*1024)),
	}
}

func checkStoreConnection(ctx context.Context, st store.Store) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := st.Ping(ctx); err != nil {
		return CheckResult{
			Name:       "Store Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify DATABASE_URL / MONGODB_URI and ensure the server is running",
		}
	}
	return CheckResult{Name: "Store Connection", Pass: true}
}

func checkTemplateCatalogue(ctx context.Context, templates store.Templates) CheckResult {
	n, err := templates.CountTemplates(ctx)
	if err != nil {
		return CheckResult{Name: "Template Catalogue", Pass: false, Error: err.Error()}
	}
	if n == 0 {
		return CheckResult{
			Name:       "Template Catalogue",
			Pass:       false,
			Error:      "No templates found",
			Suggestion: "Seed the catalogue with: jogo template seed",
		}
	}
	return CheckResult{Name: "Template Catalogue", Pass: true, Details: fmt.Sprintf("%d templates", n)}
}

func checkPostgreSQLVersion(db *sql.DB) CheckResult {
	var version string
	err := db.QueryRow("SHOW server_version").Scan(&version)
	if err != nil {
		return CheckResult{Name: "PostgreSQL Version", Pass: false, Error: err.Error()}
	}

	// e.g. "17.1 (Debian 17.1-1)"
	parts := strings.Split(version, " ")
	versionNum := strings.Split(parts[0], ".")
	major, _ := strconv.Atoi(versionNum[0])

	if major < minPostgresMajor {
		return CheckResult{
			Name:       "PostgreSQL Version",
			Pass:       false,
			Error:      fmt.Sprintf("Version %s found, need ≥%d", parts[0], minPostgresMajor),
			Suggestion: fmt.Sprintf("Upgrade PostgreSQL to version %d or higher", minPostgresMajor),
		}
	}
	return CheckResult{Name: "PostgreSQL Version", Pass: true, Details: parts[0]}
}

func checkMigrations(cfg *config.Config) CheckResult {
	version, dirty, err := migrationVersion(cfg.DatabaseURL)
	if err != nil {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Run migrations with: jogo migrate up",
		}
	}

	if version != expectedMigrationVersion {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      fmt.Sprintf("Migration version %d, expected %d", version, expectedMigrationVersion),
			Suggestion: "Run migrations with: jogo migrate up",
		}
	}

	if dirty {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      "Migration state is dirty",
			Suggestion: "Fix dirty migration state, may need manual intervention",
		}
	}

	return CheckResult{Name: "Database Migrations", Pass: true, Details: fmt.Sprintf("v%d", version)}
}

func checkTables(db *sql.DB) CheckResult {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = ANY($1)
	`

	rows, err := db.Query(query, pq.Array(requiredTables))
	if err != nil {
		return CheckResult{Name: "Database Tables", Pass: false, Error: err.Error()}
	}
	defer func() { _ = rows.Close() }()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		_ = rows.Scan(&name)
		found[name] = true
	}

	var missing []string
	for _, table := range requiredTables {
		if !found[table] {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:       "Database Tables",
			Pass:       false,
			Error:      fmt.Sprintf("Missing %d tables: %s", len(missing), strings.Join(missing, ", ")),
			Suggestion: "Run migrations to create missing tables",
		}
	}

	return CheckResult{
		Name:    "Database Tables",
		Pass:    true,
		Details: fmt.Sprintf("%d/%d tables found", len(requiredTables), len(requiredTables)),
	}
}

// doctorChecks runs every check that applies to cfg.
func doctorChecks(ctx context.Context, cfg *config.Config) []CheckResult {
	results := []CheckResult{
		checkConfiguration(cfg),
		checkDataDirectory(cfg),
		checkGeoIPDatabase(cfg),
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return append(results, CheckResult{
			Name:       "Store Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify the store settings for driver " + cfg.StoreDriver,
		})
	}
	defer func() { _ = st.Close() }()

	results = append(results, checkStoreConnection(ctx, st))
	results = append(results, checkTemplateCatalogue(ctx, st))

	if cfg.StoreDriver == config.DriverPostgres && database.DB != nil {
		results = append(results, checkPostgreSQLVersion(database.DB))
		results = append(results, checkMigrations(cfg))
		results = append(results, checkTables(database.DB))
	}
	return results
}

func runDoctor(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("✗ Configuration Error: %v\n", err)
		return err
	}

	results := doctorChecks(cmd.Context(), cfg)

	if jsonOutput {
		outputDoctorJSON(results)
	} else {
		outputDoctorHuman(results)
	}

	failed := 0
	for _, r := range results {
		if !r.Pass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func outputDoctorHuman(results []CheckResult) {
	fmt.Println("\n🏥 Jogo Health Check")

	for _, r := range results {
		icon := "✓"
		if !r.Pass {
			icon = "✗"
		}

		fmt.Printf("%s %s", icon, r.Name)
		if r.Details != "" {
			fmt.Printf(" (%s)", r.Details)
		}
		fmt.Println()

		if !r.Pass {
			if r.Error != "" {
				fmt.Printf("  Error: %s\n", r.Error)
			}
			if r.Suggestion != "" {
				fmt.Printf("  💡 %s\n", r.Suggestion)
			}
		}
	}

	passed := 0
	for _, r := range results {
		if r.Pass {
			passed++
		}
	}

	fmt.Printf("\n%d/%d checks passed\n\n", passed, len(results))
}

func outputDoctorJSON(results []CheckResult) {
	data, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(data))
}

func init() {
	doctorCmd.Flags().Bool("json", false, "Output results as JSON")
	RootCmd.AddCommand(doctorCmd)
}
