package am

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/logger"
)

// backupCount is how many rotated copies (.back1 .. .backN) Save keeps
const backupCount = 3

// Save writes cfg as TOML to path, rotating any existing file into backups first
func Save(cfg *Config, path string) error {
	data, err := Render(cfg, FormatTOML)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create config directory for %s", path)
	}

	if err := createBackup(path); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}

// createBackup rotates .back(N-1) -> .backN, ..., current -> .back1
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	oldest := backupPath(configPath, backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		// Rotation continues; the rename below overwrites it anyway
		logger.Warnw("Failed to delete old config backup", logger.FieldFile, oldest, logger.FieldError, err)
	}

	for n := backupCount - 1; n >= 1; n-- {
		from := backupPath(configPath, n)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, backupPath(configPath, n+1)); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", from)
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(backupPath(configPath, 1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

func backupPath(configPath string, n int) string {
	return configPath + ".back" + strconv.Itoa(n)
}
