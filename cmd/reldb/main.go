// Command reldb wires a storage root, catalog, and buffer pool together and
// runs a small scripted demonstration through the planner: create a couple
// of tables, insert rows, and run a join, printing the resulting rows. A
// real SQL front end would build the same planner.Select/Insert/CreateTable
// values from parsed SQL text instead of hardcoding them here.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/zhukovaskychina/reldb/config"
	"github.com/zhukovaskychina/reldb/logger"
	"github.com/zhukovaskychina/reldb/server/planner"
	"github.com/zhukovaskychina/reldb/server/storage/bufferpool"
	"github.com/zhukovaskychina/reldb/server/storage/catalog"
	"github.com/zhukovaskychina/reldb/server/storage/diskmanager"
)

func main() {
	configPath := flag.String("config", "", "path to a reldb.toml config file")
	storageRoot := flag.String("root", "", "storage root directory (overrides config)")
	poolSize := flag.Int("pool-size", 0, "buffer pool frame count (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *storageRoot != "" {
		cfg.StorageRoot = *storageRoot
	}
	if *poolSize != 0 {
		cfg.BufferPoolSize = *poolSize
	}
	if err := logger.Init(logger.Config{LogLevel: cfg.LogLevel}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Logger.Errorf("reldb: %v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(cfg.StorageRoot, "folder")); os.IsNotExist(err) {
		if err := catalog.Create(cfg.StorageRoot); err != nil {
			return err
		}
	}
	cat, err := catalog.Open(cfg.StorageRoot)
	if err != nil {
		return err
	}
	disk := diskmanager.New(cfg.StorageRoot)
	pool := bufferpool.New(disk, cfg.BufferPoolSize)

	if _, err := planner.CompileCreateTable(cat, disk, planner.CreateTable{
		Table:   "a",
		Columns: []planner.ColumnDef{{Name: "id", Type: "INT"}},
	}); err != nil {
		return err
	}
	if _, err := planner.CompileCreateTable(cat, disk, planner.CreateTable{
		Table:   "b",
		Columns: []planner.ColumnDef{{Name: "id", Type: "INT"}},
	}); err != nil {
		return err
	}

	for _, v := range []int32{10, 20} {
		if err := planner.CompileInsert(cat, disk, pool, planner.Insert{
			Table: "a", Values: []planner.Literal{{IntVal: v}},
		}); err != nil {
			return err
		}
		if err := planner.CompileInsert(cat, disk, pool, planner.Insert{
			Table: "b", Values: []planner.Literal{{IntVal: v}},
		}); err != nil {
			return err
		}
	}

	plan, err := planner.CompileSelect(cat, disk, pool, planner.Select{
		Table:   "a",
		Joins:   []planner.JoinSpec{{Table: "b", Left: "a.id", Right: "b.id"}},
		Columns: []string{"*"},
	})
	if err != nil {
		return err
	}
	defer plan.Close()

	fmt.Println("a JOIN b ON a.id = b.id:")
	for {
		row, err := plan.Next()
		if err != nil {
			break
		}
		fmt.Println(row)
	}
	return pool.Flush()
}
