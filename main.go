package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"storemy/pkg/catalog"
	"storemy/pkg/config"
	"storemy/pkg/execution"
	"storemy/pkg/execution/aggregation"
	"storemy/pkg/logging"
	"storemy/pkg/memory"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/heap"
	"storemy/pkg/tuple"
	"storemy/pkg/types"

	"github.com/charmbracelet/lipgloss"
)

type Configuration struct {
	DatabaseName string
	ConfigPath   string
	DataDir      string
	DemoMode     bool
}

func main() {
	cliConfig := parseArguments()
	showSplashScreen()

	cfg := config.Default()
	if cliConfig.ConfigPath != "" {
		loaded, err := config.Load(cliConfig.ConfigPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", cliConfig.ConfigPath, err)
		}
		cfg = loaded
	}
	if cliConfig.DataDir != "" {
		cfg.DataDir = cliConfig.DataDir
	}

	if err := logging.Init(cfg.ToLoggingConfig()); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cat, bp, err := initializeEngine(cliConfig, cfg)
	if err != nil {
		log.Fatalf("failed to initialize engine: %v", err)
	}
	defer bp.Close()

	if cliConfig.DemoMode {
		if err := runDemoMode(cat, bp); err != nil {
			log.Fatalf("demo mode failed: %v", err)
		}
	}
}

func parseArguments() Configuration {
	var cfg Configuration

	flag.StringVar(&cfg.DatabaseName, "db", "mydb", "Database name")
	flag.StringVar(&cfg.ConfigPath, "config", "", "Path to a YAML settings file")
	flag.StringVar(&cfg.DataDir, "data", "", "Data directory path (overrides config)")
	flag.BoolVar(&cfg.DemoMode, "demo", true, "Run the built-in operator demo against sample data")

	flag.Parse()
	return cfg
}

func showSplashScreen() {
	splash := `
╔══════════════════════════════════════════════════════════════╗
║                                                              ║
║        ███████╗████████╗ ██████╗ ██████╗ ███████╗            ║
║        ██╔════╝╚══██╔══╝██╔═══██╗██╔══██╗██╔════╝            ║
║        ███████╗   ██║   ██║   ██║██████╔╝█████╗              ║
║        ╚════██║   ██║   ██║   ██║██╔══██╗██╔══╝              ║
║        ███████║   ██║   ╚██████╔╝██║  ██║███████╗            ║
║        ╚══════╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝            ║
║                                                              ║
║                   ███╗   ███╗██╗   ██╗                       ║
║                   ████╗ ████║╚██╗ ██╔╝                       ║
║                   ██╔████╔██║ ╚████╔╝                        ║
║                   ██║╚██╔╝██║  ╚██╔╝                         ║
║                   ██║ ╚═╝ ██║   ██║                          ║
║                   ╚═╝     ╚═╝   ╚═╝                          ║
║                                                              ║
║             a storage and execution engine core              ║
╚══════════════════════════════════════════════════════════════╝
`
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true)

	fmt.Println(style.Render(splash))
}

// initializeEngine builds the catalog and buffer pool a demo (or, later, a
// server front-end) runs against. There is no SQL layer here: tables are
// created and queried by wiring execution operators directly.
func initializeEngine(cli Configuration, cfg config.Config) (*catalog.Catalog, *memory.BufferPool, error) {
	dataDir := cfg.DataDir
	fullPath := filepath.Join(dataDir, cli.DatabaseName)
	if err := os.MkdirAll(fullPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cat := catalog.NewCatalog()
	bp := memory.NewBufferPool(cat, cfg.BufferPoolMax)

	logging.Info("engine initialized", "database", cli.DatabaseName, "data_dir", fullPath, "buffer_pool_max_pages", cfg.BufferPoolMax)
	return cat, bp, nil
}

// runDemoMode creates a users table, inserts sample rows, and drives them
// through a handful of execution operators to exercise the pipeline
// end to end: SeqScan, Filter, Project, and an ungrouped AVG Aggregate.
func runDemoMode(cat *catalog.Catalog, bp *memory.BufferPool) error {
	fmt.Println(headerStyle().Render("Setting up sample data..."))

	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType, types.IntType},
		[]string{"id", "name", "age"},
	)
	if err != nil {
		return fmt.Errorf("building schema: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "storemy-demo-*")
	if err != nil {
		return fmt.Errorf("creating demo data dir: %w", err)
	}
	file, err := heap.NewHeapFile(primitives.Filepath(filepath.Join(tmpDir, "users.dat")), td)
	if err != nil {
		return fmt.Errorf("creating users file: %w", err)
	}
	if err := cat.AddTable("users", file, "id"); err != nil {
		return fmt.Errorf("registering users table: %w", err)
	}
	tableID := file.GetID()

	rows := []struct {
		id   int32
		name string
		age  int32
	}{
		{1, "Alice Johnson", 28},
		{2, "Bob Smith", 35},
		{3, "Charlie Brown", 42},
		{4, "Diana Prince", 31},
		{5, "Eve Wilson", 26},
	}

	tid := primitives.NewTransactionID()
	for _, row := range rows {
		t := tuple.NewTuple(td)
		if err := t.SetField(0, types.NewIntField(row.id)); err != nil {
			return err
		}
		if err := t.SetField(1, types.NewStringField(row.name)); err != nil {
			return err
		}
		if err := t.SetField(2, types.NewIntField(row.age)); err != nil {
			return err
		}
		if err := bp.InsertTuple(tid, tableID, t); err != nil {
			return fmt.Errorf("inserting row %d: %w", row.id, err)
		}
	}
	if err := bp.CommitTransaction(tid); err != nil {
		return fmt.Errorf("committing inserts: %w", err)
	}

	fmt.Println(headerStyle().Render("\nusers older than 30:"))
	if err := printOlderThan(cat, bp, tableID, td, 30); err != nil {
		return err
	}

	fmt.Println(headerStyle().Render("\naverage age:"))
	return printAverageAge(cat, bp, tableID)
}

func printOlderThan(cat *catalog.Catalog, bp *memory.BufferPool, tableID primitives.TableID, td *tuple.TupleDescription, minAge int32) error {
	queryTid := primitives.NewTransactionID()
	defer bp.CommitTransaction(queryTid)

	scan, err := execution.NewSeqScan(queryTid, tableID, bp, cat)
	if err != nil {
		return fmt.Errorf("building scan: %w", err)
	}

	pred := execution.NewPredicate(2, execution.GreaterThan, types.NewIntField(minAge))
	filter, err := execution.NewFilter(pred, scan)
	if err != nil {
		return fmt.Errorf("building filter: %w", err)
	}

	project, err := execution.NewProject([]int{1, 2}, []types.Type{types.StringType, types.IntType}, filter)
	if err != nil {
		return fmt.Errorf("building projection: %w", err)
	}

	if err := project.Open(); err != nil {
		return fmt.Errorf("opening pipeline: %w", err)
	}
	defer project.Close()

	for {
		hasNext, err := project.HasNext()
		if err != nil {
			return fmt.Errorf("scanning: %w", err)
		}
		if !hasNext {
			break
		}
		row, err := project.Next()
		if err != nil {
			return fmt.Errorf("reading row: %w", err)
		}
		name, _ := row.GetField(0)
		age, _ := row.GetField(1)
		fmt.Printf("  %-16s %s\n", name.String(), age.String())
	}
	return nil
}

func printAverageAge(cat *catalog.Catalog, bp *memory.BufferPool, tableID primitives.TableID) error {
	queryTid := primitives.NewTransactionID()
	defer bp.CommitTransaction(queryTid)

	scan, err := execution.NewSeqScan(queryTid, tableID, bp, cat)
	if err != nil {
		return fmt.Errorf("building scan: %w", err)
	}

	avg, err := aggregation.NewAggregateOperator(scan, 2, aggregation.NoGrouping, aggregation.Avg)
	if err != nil {
		return fmt.Errorf("building aggregate: %w", err)
	}

	if err := avg.Open(); err != nil {
		return fmt.Errorf("opening aggregate: %w", err)
	}
	defer avg.Close()

	hasNext, err := avg.HasNext()
	if err != nil {
		return fmt.Errorf("checking aggregate result: %w", err)
	}
	if !hasNext {
		fmt.Println("  no rows")
		return nil
	}
	row, err := avg.Next()
	if err != nil {
		return fmt.Errorf("reading aggregate result: %w", err)
	}
	value, _ := row.GetField(0)
	fmt.Printf("  %s\n", value.String())
	return nil
}

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE")).Bold(true)
}
