package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-m string   MongoDB connection URI
//	-db string  database name
//	-t int      connect timeout, milliseconds
//	-o int      per-operation timeout, milliseconds
//	-w int      bcrypt cost
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Timeout flags
// are accepted as integers in milliseconds and then converted to
// time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-db", "-t", "-o", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB connection URI")
	fs.StringVar(&config.Database, "db", config.Database, "database name")

	connectTimeout := fs.Int("t", int(config.ConnectTimeout.Milliseconds()), "connect timeout (in milliseconds)")
	operationTimeout := fs.Int("o", int(config.OperationTimeout.Milliseconds()), "operation timeout (in milliseconds)")

	fs.IntVar(&config.BcryptCost, "w", config.BcryptCost, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ConnectTimeout = time.Duration(*connectTimeout) * time.Millisecond
	config.OperationTimeout = time.Duration(*operationTimeout) * time.Millisecond
}
