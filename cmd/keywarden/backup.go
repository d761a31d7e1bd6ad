// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/model"
)

// backupCmd represents the 'backup' command. It dumps all data from the
// database into a single compressed JSON file.
var backupCmd = &cobra.Command{
	Use:   "backup [output-file]",
	Short: "Create a compressed (zstd) JSON backup of the database",
	Long: `Dumps the entire contents of the Keywarden database (settings and the
audit log) into a single, Zstandard-compressed JSON file.

If an output file is specified, '.zst' will be appended to the name if
it's not already present. If no output file is specified, a default
filename 'keywarden-backup-YYYY-MM-DD.json.zst' is used.

The backup holds the stored values themselves, including the API key.
Treat the file like the database it was dumped from.

Examples:
  # Backup to a default file (e.g., keywarden-backup-2025-10-26.json.zst)
  keywarden backup

  # Backup to a specific file
  keywarden backup my-backup.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var outputFile string
		if len(args) == 0 {
			outputFile = fmt.Sprintf("keywarden-backup-%s.json.zst", time.Now().Format("2006-01-02"))
		} else {
			outputFile = args[0]
			if !strings.HasSuffix(outputFile, ".zst") {
				outputFile += ".zst"
			}
		}

		data, err := db.ExportDataForBackup()
		if err != nil {
			return fmt.Errorf("could not export the database: %w", err)
		}
		if err := writeCompressedBackup(outputFile, data); err != nil {
			return err
		}
		fmt.Printf("Backup written to %s\n", outputFile)
		return nil
	},
}

// restoreCmd represents the 'restore' command. It restores the database
// from a compressed JSON backup file.
var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file.zst>",
	Short: "Restore the database from a compressed JSON backup",
	Long: `Restores the Keywarden database from a Zstandard-compressed JSON backup
file. By default this is a non-destructive integration: only settings
that do not exist yet are added, and the audit log is left alone.

To wipe all existing data and import the backup as-is, use the --full
flag. WARNING: --full is destructive and not reversible.

Example (integrate):
  keywarden restore ./keywarden-backup-2025-10-26.json.zst

Example (full restore):
  keywarden restore --full ./keywarden-backup-2025-10-26.json.zst`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		data, err := readCompressedBackup(inputFile)
		if err != nil {
			return err
		}

		mode := "integrate"
		if fullRestore {
			mode = "full"
			err = db.ImportDataFromBackup(data)
		} else {
			err = db.IntegrateDataFromBackup(data)
		}
		if err != nil {
			return fmt.Errorf("could not restore the backup: %w", err)
		}

		// Logged after the import so the entry survives a full wipe.
		_ = db.LogAction("RESTORE_BACKUP", fmt.Sprintf("file: %s, mode: %s", filepath.Base(inputFile), mode))
		fmt.Printf("Restore from %s complete.\n", inputFile)
		return nil
	},
}

// writeCompressedBackup writes the backup data to a zstd-compressed
// file, streaming the JSON encoding directly into the compressor.
func writeCompressedBackup(filename string, data *model.BackupData) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdWriter, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}

	encoder := json.NewEncoder(zstdWriter)
	encoder.SetIndent("", "  ") // Pretty-print the JSON inside the compressed file

	if err := encoder.Encode(data); err != nil {
		_ = zstdWriter.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}

	// Close flushes the compressor; an encode that never flushes would
	// leave a truncated file behind.
	if err := zstdWriter.Close(); err != nil {
		return fmt.Errorf("could not finish zstd stream: %w", err)
	}
	return nil
}

// readCompressedBackup reads and decodes a zstd-compressed JSON backup
// file.
func readCompressedBackup(filename string) (*model.BackupData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdReader, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zstdReader.Close()

	var backupData model.BackupData
	if err := json.NewDecoder(zstdReader).Decode(&backupData); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}

	return &backupData, nil
}
