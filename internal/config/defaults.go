package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	maxRetries = 3
	retryDelay = 500 * time.Millisecond
	sslVerify  = true
	s3Region   = "us-east-1"
)

var (
	tempDir    = filepath.Join(os.TempDir(), configFileName)
	ledgerPath = filepath.Join(xdg.StateHome, configFileName, "tempfiles.db")
)
