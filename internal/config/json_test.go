package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_OverlaysValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")

	body := `{
		"mongo_uri": "mongodb://replica:27017/?replicaSet=rs0",
		"database": "mflix",
		"connect_timeout": "3s",
		"operation_timeout": "750ms",
		"bcrypt_cost": 8
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-c", path}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	assert.Equal(t, "mongodb://replica:27017/?replicaSet=rs0", config.MongoURI)
	assert.Equal(t, "mflix", config.Database)
	assert.Equal(t, 3*time.Second, config.ConnectTimeout)
	assert.Equal(t, 750*time.Millisecond, config.OperationTimeout)
	assert.Equal(t, 8, config.BcryptCost)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd"}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	assert.Equal(t, "mongodb://localhost:27017", config.MongoURI)
}
